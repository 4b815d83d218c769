package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_shop_bot/internal/conversation"
	"tg_shop_bot/internal/domain"
	"tg_shop_bot/internal/logging"
)

// sessionStore is the persistence boundary for per-chat conversation state.
type sessionStore interface {
	Get(ctx context.Context, chatID int64) (domain.State, bool, error)
	Set(ctx context.Context, chatID int64, state domain.State) error
}

// tokenSource issues a backend access token for one dispatch cycle.
type tokenSource interface {
	AccessToken(ctx context.Context) (domain.Token, error)
}

// stateMachine resolves the handler registered for a conversation state.
type stateMachine interface {
	Handler(state domain.State) (conversation.HandlerFunc, error)
}

// Dispatcher routes normalized updates through the conversation machine. Every
// failure on the path is logged and swallowed so one broken event never stops
// the polling loop; the stored state is left untouched when a handler fails.
type Dispatcher struct {
	sessions sessionStore
	tokens   tokenSource
	machine  stateMachine
	logger   *logrus.Entry
}

// NewDispatcher wires the dispatch pipeline.
func NewDispatcher(sessions sessionStore, tokens tokenSource, machine stateMachine, logger *logrus.Entry) (*Dispatcher, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	if machine == nil {
		return nil, errors.New("state machine is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	return &Dispatcher{
		sessions: sessions,
		tokens:   tokens,
		machine:  machine,
		logger:   logger,
	}, nil
}

// Handle processes one inbound update end to end: resolve the chat's state,
// fetch a fresh backend token, run the state handler, and commit the returned
// state. Updates that are neither a text message nor a callback are ignored.
func (d *Dispatcher) Handle(ctx context.Context, update *models.Update) {
	ev, ok := normalizeUpdate(update)
	if !ok {
		return
	}

	entry := d.logger.WithFields(logging.Fields{"chat_id": ev.ChatID})

	state, err := d.resolveState(ctx, ev)
	if err != nil {
		entry.WithFields(logging.Fields{"event": "resolve_state_failed"}).
			WithError(err).Error("failed to resolve conversation state")
		return
	}

	handler, err := d.machine.Handler(state)
	if err != nil {
		entry.WithFields(logging.Fields{
			"event": "unknown_state",
			"state": string(state),
		}).WithError(err).Warn("dropping event for unhandled state")
		return
	}

	token, err := d.tokens.AccessToken(ctx)
	if err != nil {
		entry.WithFields(logging.Fields{
			"event": "access_token_failed",
			"state": string(state),
		}).WithError(err).Error("failed to acquire backend token")
		return
	}

	next, err := handler(ctx, ev, token.AccessToken)
	if err != nil {
		entry.WithFields(logging.Fields{
			"event":   "handler_failed",
			"state":   string(state),
			"payload": ev.Payload,
		}).WithError(err).Error("state handler failed")
		return
	}

	if err := d.sessions.Set(ctx, ev.ChatID, next); err != nil {
		entry.WithFields(logging.Fields{
			"event": "session_write_failed",
			"state": string(next),
		}).WithError(err).Error("failed to persist conversation state")
	}
}

// resolveState picks the state whose handler receives the event. A /start
// message always restarts the conversation; a chat with no stored session is
// treated as brand new.
func (d *Dispatcher) resolveState(ctx context.Context, ev conversation.Event) (domain.State, error) {
	if strings.TrimSpace(ev.Payload) == conversation.StartCommand {
		return domain.StateStart, nil
	}

	state, found, err := d.sessions.Get(ctx, ev.ChatID)
	if err != nil {
		return "", err
	}
	if !found {
		return domain.StateStart, nil
	}
	return state, nil
}

// normalizeUpdate flattens the two update shapes we poll for into one event.
func normalizeUpdate(update *models.Update) (conversation.Event, bool) {
	if update == nil {
		return conversation.Event{}, false
	}

	if msg := update.Message; msg != nil {
		if msg.Text == "" || msg.Chat.ID == 0 {
			return conversation.Event{}, false
		}
		return conversation.Event{
			ChatID:    msg.Chat.ID,
			Payload:   msg.Text,
			MessageID: msg.ID,
		}, true
	}

	if cb := update.CallbackQuery; cb != nil {
		chatID, messageID := callbackOrigin(cb)
		if chatID == 0 || cb.Data == "" {
			return conversation.Event{}, false
		}
		return conversation.Event{
			ChatID:       chatID,
			Payload:      cb.Data,
			MessageID:    messageID,
			FromCallback: true,
		}, true
	}

	return conversation.Event{}, false
}

// callbackOrigin extracts the chat and message the pressed button lives on.
// Telegram reports an inaccessible message for buttons older than 48 hours;
// the chat and message ids survive either way.
func callbackOrigin(cb *models.CallbackQuery) (int64, int) {
	if m := cb.Message.Message; m != nil {
		return m.Chat.ID, m.ID
	}
	if m := cb.Message.InaccessibleMessage; m != nil {
		return m.Chat.ID, m.MessageID
	}
	return 0, 0
}
