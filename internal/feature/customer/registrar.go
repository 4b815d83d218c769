// Package customer registers checkout emails against the commerce backend.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"tg_shop_bot/internal/logging"
)

type customerCreator interface {
	CreateCustomer(ctx context.Context, token string, chatID int64, email string) error
}

// Registrar creates a commerce customer record for a chat when the user
// completes checkout by sending their email.
type Registrar struct {
	shop   customerCreator
	logger *logrus.Entry
}

// NewRegistrar constructs a Registrar backed by the commerce client.
func NewRegistrar(shop customerCreator, logger *logrus.Entry) *Registrar {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registrar{
		shop:   shop,
		logger: logger,
	}
}

// RegisterEmail validates the email shape minimally and registers it with the
// commerce backend under the chat id. Deeper validation is left to the
// backend, which rejects addresses it cannot use.
func (r *Registrar) RegisterEmail(ctx context.Context, token string, chatID int64, email string) error {
	if r == nil || r.shop == nil {
		return errors.New("customer registrar is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if chatID == 0 {
		return errors.New("chat id is required")
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}

	if err := r.shop.CreateCustomer(ctx, token, chatID, email); err != nil {
		return fmt.Errorf("register customer email: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":   "customer_registered",
		"chat_id": chatID,
	}).Info("registered checkout email")

	return nil
}
