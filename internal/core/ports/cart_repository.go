package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// CartRepository persists carts and their items. Carts are always returned
// with their items and each item's product loaded. Lookups of a missing cart
// return a *domain.ResourceNotFoundError.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*domain.Cart, error)
	// FindOrCreate returns the user's cart, creating an empty one if needed.
	FindOrCreate(ctx context.Context, userID uint) (*domain.Cart, error)
	List(ctx context.Context) ([]domain.Cart, error)
	ListContainingProduct(ctx context.Context, productID uint) ([]domain.Cart, error)
	AddItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	UpdateItemPricing(ctx context.Context, itemID uint, price, discount float64) error
	DeleteItem(ctx context.Context, itemID uint) error
	UpdateTotal(ctx context.Context, cartID uint, total float64) error
}
