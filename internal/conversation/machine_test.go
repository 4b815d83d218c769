package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"tg_shop_bot/internal/domain"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard Keyboard
}

type sentPhoto struct {
	chatID   int64
	photoURL string
	caption  string
	keyboard Keyboard
}

type editedMessage struct {
	chatID    int64
	messageID int
	text      string
	keyboard  Keyboard
}

type deletedMessage struct {
	chatID    int64
	messageID int
}

type fakeGateway struct {
	messages []sentMessage
	photos   []sentPhoto
	edits    []editedMessage
	deletes  []deletedMessage

	sendErr   error
	editErr   error
	deleteErr error

	nextMessageID int
}

func (f *fakeGateway) SendMessage(_ context.Context, chatID int64, text string, keyboard Keyboard) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeGateway) SendPhoto(_ context.Context, chatID int64, photoURL, caption string, keyboard Keyboard) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.photos = append(f.photos, sentPhoto{chatID: chatID, photoURL: photoURL, caption: caption, keyboard: keyboard})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeGateway) EditMessage(_ context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editedMessage{chatID: chatID, messageID: messageID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeGateway) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, deletedMessage{chatID: chatID, messageID: messageID})
	return nil
}

type addCall struct {
	chatID    int64
	productID string
	quantity  int
}

type removeCall struct {
	chatID int64
	itemID string
}

type fakeCommerce struct {
	products []domain.Product
	items    []domain.CartItem
	summary  domain.CartSummary

	addCalls    []addCall
	removeCalls []removeCall

	productsErr error
	productErr  error
	addErr      error
	removeErr   error
	imageErr    error
}

func (f *fakeCommerce) Products(context.Context, string) ([]domain.Product, error) {
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products, nil
}

func (f *fakeCommerce) Product(_ context.Context, _ string, productID string) (domain.Product, error) {
	if f.productErr != nil {
		return domain.Product{}, f.productErr
	}
	for _, p := range f.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, errors.New("product not found")
}

func (f *fakeCommerce) Cart(context.Context, string, int64) (domain.CartSummary, error) {
	return f.summary, nil
}

func (f *fakeCommerce) CartItems(context.Context, string, int64) ([]domain.CartItem, error) {
	return f.items, nil
}

func (f *fakeCommerce) AddCartItem(_ context.Context, _ string, chatID int64, productID string, quantity int) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addCalls = append(f.addCalls, addCall{chatID: chatID, productID: productID, quantity: quantity})
	return nil
}

func (f *fakeCommerce) RemoveCartItem(_ context.Context, _ string, chatID int64, itemID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removeCalls = append(f.removeCalls, removeCall{chatID: chatID, itemID: itemID})
	return nil
}

func (f *fakeCommerce) ImageURL(_ context.Context, _ string, fileID string) (string, error) {
	if f.imageErr != nil {
		return "", f.imageErr
	}
	return fmt.Sprintf("https://cdn.example.com/%s.jpg", fileID), nil
}

type registeredEmail struct {
	chatID int64
	email  string
}

type fakeRegistrar struct {
	registered []registeredEmail
	err        error
}

func (f *fakeRegistrar) RegisterEmail(_ context.Context, _ string, chatID int64, email string) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, registeredEmail{chatID: chatID, email: email})
	return nil
}

func newTestMachine(t *testing.T, shop *fakeCommerce) (*Machine, *fakeGateway, *fakeRegistrar) {
	t.Helper()

	gateway := &fakeGateway{}
	registrar := &fakeRegistrar{}
	hookLogger, _ := logtest.NewNullLogger()

	machine, err := NewMachine(gateway, shop, registrar, logrus.NewEntry(hookLogger))
	if err != nil {
		t.Fatalf("NewMachine returned error: %v", err)
	}

	return machine, gateway, registrar
}

func TestNewMachineValidatesCollaborators(t *testing.T) {
	shop := &fakeCommerce{}

	if _, err := NewMachine(nil, shop, &fakeRegistrar{}, nil); err == nil {
		t.Fatalf("expected error for nil gateway")
	}
	if _, err := NewMachine(&fakeGateway{}, nil, &fakeRegistrar{}, nil); err == nil {
		t.Fatalf("expected error for nil commerce client")
	}
	if _, err := NewMachine(&fakeGateway{}, shop, nil, nil); err == nil {
		t.Fatalf("expected error for nil email registrar")
	}
}

func TestHandlerCoversEveryKnownState(t *testing.T) {
	machine, _, _ := newTestMachine(t, &fakeCommerce{})

	for _, state := range []domain.State{
		domain.StateStart,
		domain.StateMenu,
		domain.StateDescription,
		domain.StateCart,
		domain.StateAwaitEmail,
	} {
		if _, err := machine.Handler(state); err != nil {
			t.Fatalf("expected handler for %s, got error: %v", state, err)
		}
	}
}

func TestHandlerRejectsUnknownState(t *testing.T) {
	machine, _, _ := newTestMachine(t, &fakeCommerce{})

	_, err := machine.Handler(domain.State("BOGUS"))

	var unknown *domain.UnknownStateError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStateError, got %v", err)
	}
}
