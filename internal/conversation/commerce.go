package conversation

import (
	"context"

	"tg_shop_bot/internal/domain"
)

// Commerce is the slice of the commerce backend the state handlers depend on.
// moltin.Client satisfies it; tests substitute a fake.
type Commerce interface {
	Products(ctx context.Context, token string) ([]domain.Product, error)
	Product(ctx context.Context, token, productID string) (domain.Product, error)
	Cart(ctx context.Context, token string, chatID int64) (domain.CartSummary, error)
	CartItems(ctx context.Context, token string, chatID int64) ([]domain.CartItem, error)
	AddCartItem(ctx context.Context, token string, chatID int64, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, token string, chatID int64, itemID string) error
	ImageURL(ctx context.Context, token, fileID string) (string, error)
}

// EmailRegistrar registers a checkout email against a chat.
type EmailRegistrar interface {
	RegisterEmail(ctx context.Context, token string, chatID int64, email string) error
}
