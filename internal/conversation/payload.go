package conversation

import (
	"strconv"
	"strings"

	"tg_shop_bot/internal/domain"
)

// StartCommand resets the conversation from any state.
const StartCommand = "/start"

// Navigation payloads attached to inline buttons. These are wire values stored
// in callback data; changing them breaks keyboards already on users' screens.
const (
	payloadCart       = "cart"
	payloadBack       = "back"
	payloadBackToMenu = "back_to_menu"
	payloadPay        = "pay"
)

// quantityDelimiter joins product id and quantity in a quantity button payload.
const quantityDelimiter = "_"

// quantityPayload encodes the add-to-cart choice for a product.
func quantityPayload(productID string, quantity int) string {
	return productID + quantityDelimiter + strconv.Itoa(quantity)
}

// parseQuantityPayload decodes a "{productID}_{quantity}" payload. The format
// is exactly two non-empty parts with a positive integer quantity; anything
// else fails with MalformedPayloadError.
func parseQuantityPayload(payload string) (string, int, error) {
	parts := strings.Split(payload, quantityDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", 0, &domain.MalformedPayloadError{Payload: payload}
	}

	quantity, err := strconv.Atoi(parts[1])
	if err != nil || quantity <= 0 {
		return "", 0, &domain.MalformedPayloadError{Payload: payload}
	}

	return parts[0], quantity, nil
}
