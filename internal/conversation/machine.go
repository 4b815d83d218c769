// Package conversation implements the finite-state machine driving the shop
// dialog: menu browsing, product screens, cart management, and email checkout.
// Handlers perform their side effects through the Gateway and Commerce
// boundaries and return the next state; they never persist anything themselves.
package conversation

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tg_shop_bot/internal/domain"
	"tg_shop_bot/internal/logging"
)

// Event is one normalized inbound user action. Payload carries the message
// text for plain messages and the callback data for button presses.
type Event struct {
	ChatID       int64
	Payload      string
	MessageID    int
	FromCallback bool
}

// HandlerFunc reacts to an event in one state and returns the state to commit.
// On error the returned state is meaningless and must not be persisted.
type HandlerFunc func(ctx context.Context, ev Event, token string) (domain.State, error)

// Machine holds the state registry and the collaborators shared by all
// handlers.
type Machine struct {
	gateway  Gateway
	shop     Commerce
	emails   EmailRegistrar
	logger   *logrus.Entry
	handlers map[domain.State]HandlerFunc
}

// NewMachine wires the handler registry. Every state declared in the domain
// package has exactly one handler here.
func NewMachine(gateway Gateway, shop Commerce, emails EmailRegistrar, logger *logrus.Entry) (*Machine, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if shop == nil {
		return nil, errors.New("commerce client is required")
	}
	if emails == nil {
		return nil, errors.New("email registrar is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	m := &Machine{
		gateway: gateway,
		shop:    shop,
		emails:  emails,
		logger:  logger,
	}

	m.handlers = map[domain.State]HandlerFunc{
		domain.StateStart:       m.handleStart,
		domain.StateMenu:        m.handleMenu,
		domain.StateDescription: m.handleDescription,
		domain.StateCart:        m.handleCart,
		domain.StateAwaitEmail:  m.handleAwaitEmail,
	}

	return m, nil
}

// Handler resolves the handler registered for a state. A state outside the
// registry fails with UnknownStateError; the dispatcher drops such events.
func (m *Machine) Handler(state domain.State) (HandlerFunc, error) {
	handler, ok := m.handlers[state]
	if !ok {
		return nil, &domain.UnknownStateError{Value: string(state)}
	}
	return handler, nil
}
