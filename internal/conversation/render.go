package conversation

import (
	"context"
	"fmt"
	"strings"
)

const menuPrompt = "Choose an available fish:"

// sendMenu renders the product menu: one button per catalog product plus the
// cart shortcut.
func (m *Machine) sendMenu(ctx context.Context, chatID int64, token string) error {
	text, keyboard, err := m.menuView(ctx, token)
	if err != nil {
		return err
	}

	_, err = m.gateway.SendMessage(ctx, chatID, text, keyboard)
	return err
}

func (m *Machine) menuView(ctx context.Context, token string) (string, Keyboard, error) {
	products, err := m.shop.Products(ctx, token)
	if err != nil {
		return "", nil, err
	}

	keyboard := make(Keyboard, 0, len(products)+1)
	for _, product := range products {
		keyboard = append(keyboard, []Button{{Label: product.Name, Data: product.ID}})
	}
	keyboard = append(keyboard, []Button{{Label: "Cart", Data: payloadCart}})

	return menuPrompt, keyboard, nil
}

// sendCart renders the cart view as a new message.
func (m *Machine) sendCart(ctx context.Context, chatID int64, token string) error {
	text, keyboard, err := m.cartView(ctx, chatID, token)
	if err != nil {
		return err
	}

	_, err = m.gateway.SendMessage(ctx, chatID, text, keyboard)
	return err
}

// cartView builds the cart text (one block per item plus the overall total)
// and its keyboard (one remove button per item plus Pay and Back to Menu).
func (m *Machine) cartView(ctx context.Context, chatID int64, token string) (string, Keyboard, error) {
	items, err := m.shop.CartItems(ctx, token, chatID)
	if err != nil {
		return "", nil, err
	}

	if len(items) == 0 {
		keyboard := Keyboard{{{Label: "Back to Menu", Data: payloadBackToMenu}}}
		return "Your cart is empty.", keyboard, nil
	}

	summary, err := m.shop.Cart(ctx, token, chatID)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	keyboard := make(Keyboard, 0, len(items)+2)

	for _, item := range items {
		fmt.Fprintf(&text, "%s\n%s per kg\n%d kg in cart for %s\n\n", item.Name, item.UnitPrice, item.Quantity, item.LineTotal)
		keyboard = append(keyboard, []Button{{Label: "Remove " + item.Name, Data: item.ID}})
	}
	fmt.Fprintf(&text, "Total: %s", summary.Total)

	keyboard = append(keyboard,
		[]Button{{Label: "Pay", Data: payloadPay}},
		[]Button{{Label: "Back to Menu", Data: payloadBackToMenu}},
	)

	return text.String(), keyboard, nil
}
