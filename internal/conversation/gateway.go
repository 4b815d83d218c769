package conversation

import "context"

// Button is one inline keyboard button; Data is the callback payload delivered
// back to the dispatcher when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Keyboard is rows of inline buttons.
type Keyboard [][]Button

// Gateway is the messenger boundary consumed by the state handlers. Send
// operations return the id of the created message so later transitions can
// edit or delete it.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard Keyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
