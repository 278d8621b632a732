package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// CartOperation adjusts an item's quantity by one unit.
type CartOperation string

const (
	CartOperationAdd    CartOperation = "add"
	CartOperationDelete CartOperation = "delete"
)

// CartService implements shopping-cart use cases for an explicit principal.
type CartService interface {
	AddProduct(ctx context.Context, principal *domain.Principal, productID uint, quantity int) (*domain.Cart, error)
	GetCart(ctx context.Context, principal *domain.Principal) (*domain.Cart, error)
	ListCarts(ctx context.Context) ([]domain.Cart, error)
	UpdateQuantity(ctx context.Context, principal *domain.Principal, productID uint, op CartOperation) (*domain.Cart, error)
	RemoveProduct(ctx context.Context, principal *domain.Principal, cartID, productID uint) (*domain.Cart, error)
}

// ProductCartSync keeps open carts consistent with catalog changes.
type ProductCartSync interface {
	// SyncProduct re-prices every cart line holding the product.
	SyncProduct(ctx context.Context, product *domain.Product) error
	// PurgeProduct removes the product from every cart.
	PurgeProduct(ctx context.Context, productID uint) error
}
