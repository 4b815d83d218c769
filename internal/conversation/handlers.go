package conversation

import (
	"context"
	"fmt"
	"strings"

	"tg_shop_bot/internal/domain"
	"tg_shop_bot/internal/logging"
)

// handleStart renders the product menu for a fresh or reset conversation.
func (m *Machine) handleStart(ctx context.Context, ev Event, token string) (domain.State, error) {
	if err := m.sendMenu(ctx, ev.ChatID, token); err != nil {
		return "", err
	}
	return domain.StateMenu, nil
}

// handleMenu reacts to a menu button: the cart view or a product screen. Both
// transitions replace the menu message (send new, delete trigger).
func (m *Machine) handleMenu(ctx context.Context, ev Event, token string) (domain.State, error) {
	if ev.Payload == payloadCart {
		if err := m.sendCart(ctx, ev.ChatID, token); err != nil {
			return "", err
		}
		m.deleteTrigger(ctx, ev)
		return domain.StateCart, nil
	}

	product, err := m.shop.Product(ctx, token, ev.Payload)
	if err != nil {
		return "", err
	}

	caption := product.Name
	if product.Description != "" {
		caption += "\n\n" + product.Description
	}

	keyboard := Keyboard{
		{
			{Label: "1 kg", Data: quantityPayload(product.ID, 1)},
			{Label: "5 kg", Data: quantityPayload(product.ID, 5)},
			{Label: "10 kg", Data: quantityPayload(product.ID, 10)},
		},
		{{Label: "Cart", Data: payloadCart}},
		{{Label: "Back", Data: payloadBack}},
	}

	// Products without a main image fall back to a plain text screen.
	if product.ImageID == "" {
		if _, err := m.gateway.SendMessage(ctx, ev.ChatID, caption, keyboard); err != nil {
			return "", err
		}
	} else {
		imageURL, err := m.shop.ImageURL(ctx, token, product.ImageID)
		if err != nil {
			return "", err
		}
		if _, err := m.gateway.SendPhoto(ctx, ev.ChatID, imageURL, caption, keyboard); err != nil {
			return "", err
		}
	}

	m.deleteTrigger(ctx, ev)
	return domain.StateDescription, nil
}

// handleDescription reacts to a product screen button: back to the menu, the
// cart view, or an add-to-cart quantity choice. Adding to the cart keeps the
// product screen in place so the user can add more.
func (m *Machine) handleDescription(ctx context.Context, ev Event, token string) (domain.State, error) {
	switch ev.Payload {
	case payloadBack:
		if err := m.sendMenu(ctx, ev.ChatID, token); err != nil {
			return "", err
		}
		m.deleteTrigger(ctx, ev)
		return domain.StateMenu, nil

	case payloadCart:
		if err := m.sendCart(ctx, ev.ChatID, token); err != nil {
			return "", err
		}
		m.deleteTrigger(ctx, ev)
		return domain.StateCart, nil
	}

	productID, quantity, err := parseQuantityPayload(ev.Payload)
	if err != nil {
		return "", err
	}

	if err := m.shop.AddCartItem(ctx, token, ev.ChatID, productID, quantity); err != nil {
		return "", err
	}

	if _, err := m.gateway.SendMessage(ctx, ev.ChatID, fmt.Sprintf("Added %d kg to your cart.", quantity), nil); err != nil {
		return "", err
	}

	return domain.StateDescription, nil
}

// handleCart reacts to a cart view button: back to the menu, checkout, or an
// item removal. Removal re-renders the cart by editing the message in place so
// the screen updates without flicker.
func (m *Machine) handleCart(ctx context.Context, ev Event, token string) (domain.State, error) {
	switch ev.Payload {
	case payloadBackToMenu:
		if err := m.sendMenu(ctx, ev.ChatID, token); err != nil {
			return "", err
		}
		m.deleteTrigger(ctx, ev)
		return domain.StateMenu, nil

	case payloadPay:
		if _, err := m.gateway.SendMessage(ctx, ev.ChatID, "Please send your email to complete the order.", nil); err != nil {
			return "", err
		}
		m.deleteTrigger(ctx, ev)
		return domain.StateAwaitEmail, nil
	}

	if err := m.shop.RemoveCartItem(ctx, token, ev.ChatID, ev.Payload); err != nil {
		return "", err
	}

	text, keyboard, err := m.cartView(ctx, ev.ChatID, token)
	if err != nil {
		return "", err
	}
	if err := m.gateway.EditMessage(ctx, ev.ChatID, ev.MessageID, text, keyboard); err != nil {
		return "", err
	}

	return domain.StateCart, nil
}

// handleAwaitEmail treats the inbound text as the checkout email, registers it,
// acknowledges, and returns the user to the menu.
func (m *Machine) handleAwaitEmail(ctx context.Context, ev Event, token string) (domain.State, error) {
	email := strings.TrimSpace(ev.Payload)

	if err := m.emails.RegisterEmail(ctx, token, ev.ChatID, email); err != nil {
		return "", err
	}

	ack := fmt.Sprintf("Thanks! We saved %s and will be in touch about your order.", email)
	if _, err := m.gateway.SendMessage(ctx, ev.ChatID, ack, nil); err != nil {
		return "", err
	}

	if err := m.sendMenu(ctx, ev.ChatID, token); err != nil {
		return "", err
	}

	return domain.StateMenu, nil
}

// deleteTrigger removes the message whose button produced the event. A failed
// delete only degrades the screen visually, so it is logged and swallowed.
func (m *Machine) deleteTrigger(ctx context.Context, ev Event) {
	if !ev.FromCallback || ev.MessageID == 0 {
		return
	}

	if err := m.gateway.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
		m.logger.WithFields(logging.Fields{
			"event":      "delete_message_failed",
			"chat_id":    ev.ChatID,
			"message_id": ev.MessageID,
		}).WithError(err).Warn("failed to delete replaced message")
	}
}
