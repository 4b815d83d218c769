// Package domain defines shared domain types and the conversation error taxonomy.
package domain

// State names one stage of the shop conversation. The value is stored verbatim
// in the session store, so renaming a constant is a breaking change for any
// chat with an in-flight conversation.
type State string

const (
	// StateStart renders the product menu for a fresh conversation.
	StateStart State = "START"
	// StateMenu waits for a product or cart selection from the menu.
	StateMenu State = "HANDLE_MENU"
	// StateDescription waits for a quantity, cart, or back selection on a product screen.
	StateDescription State = "HANDLE_DESCRIPTION"
	// StateCart waits for an item removal, payment, or back selection on the cart screen.
	StateCart State = "HANDLE_CART"
	// StateAwaitEmail waits for the user to send their email as free text.
	StateAwaitEmail State = "WAITING_EMAIL"
)

// ParseState validates a stored state value. Values outside the known set fail
// with UnknownStateError so corruption is caught at the store boundary rather
// than deep inside dispatch.
func ParseState(value string) (State, error) {
	switch State(value) {
	case StateStart, StateMenu, StateDescription, StateCart, StateAwaitEmail:
		return State(value), nil
	}
	return "", &UnknownStateError{Value: value}
}

// String returns the stored representation of the state.
func (s State) String() string {
	return string(s)
}
