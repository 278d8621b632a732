package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// CartService manages the caller's shopping cart. Every operation acts on the
// principal it is handed, never on ambient request state.
type CartService struct {
	carts    ports.CartRepository
	products ports.ProductRepository
	logger   zerolog.Logger
}

var (
	_ ports.CartService     = (*CartService)(nil)
	_ ports.ProductCartSync = (*CartService)(nil)
)

func NewCartService(carts ports.CartRepository, products ports.ProductRepository, logger zerolog.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

func (s *CartService) AddProduct(ctx context.Context, principal *domain.Principal, productID uint, quantity int) (*domain.Cart, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if quantity < 1 {
		return nil, domain.NewAPIError("Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.FindOrCreate(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	if cart.ItemFor(productID) != nil {
		return nil, domain.NewAPIError("Product %s already exists in the cart", product.Name)
	}
	if err := checkStock(product, quantity); err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		CartID:       cart.ID,
		ProductID:    product.ID,
		Quantity:     quantity,
		Discount:     product.Discount,
		ProductPrice: product.SpecialPrice,
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicateCartItem) {
			return nil, domain.NewAPIError("Product %s already exists in the cart", product.Name)
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	s.logger.Info().Str("username", principal.Username).Uint("product_id", productID).Int("quantity", quantity).Msg("product added to cart")
	return s.refresh(ctx, principal.UserID)
}

func (s *CartService) GetCart(ctx context.Context, principal *domain.Principal) (*domain.Cart, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.carts.FindByUserID(ctx, principal.UserID)
}

func (s *CartService) ListCarts(ctx context.Context) ([]domain.Cart, error) {
	carts, err := s.carts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	if carts == nil {
		carts = []domain.Cart{}
	}
	return carts, nil
}

// UpdateQuantity moves an item's quantity by one unit. An item that reaches
// zero is removed.
func (s *CartService) UpdateQuantity(ctx context.Context, principal *domain.Principal, productID uint, op ports.CartOperation) (*domain.Cart, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}

	var delta int
	switch op {
	case ports.CartOperationAdd:
		delta = 1
	case ports.CartOperationDelete:
		delta = -1
	default:
		return nil, domain.NewAPIError("Invalid operation %q, expected add or delete", op)
	}

	cart, err := s.carts.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := cart.ItemFor(productID)
	if item == nil {
		return nil, domain.NewAPIError("Product %s not available in the cart!!!", product.Name)
	}

	newQty := item.Quantity + delta
	if delta > 0 {
		if err := checkStock(product, newQty); err != nil {
			return nil, err
		}
	}

	if newQty <= 0 {
		err = s.carts.DeleteItem(ctx, item.ID)
	} else {
		err = s.carts.UpdateItemQuantity(ctx, item.ID, newQty)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart quantity: %w", err)
	}
	return s.refresh(ctx, principal.UserID)
}

// RemoveProduct deletes a line from the caller's own cart. A cart id that is
// not the caller's is reported as missing.
func (s *CartService) RemoveProduct(ctx context.Context, principal *domain.Principal, cartID, productID uint) (*domain.Cart, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}

	cart, err := s.carts.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if cart.ID != cartID {
		return nil, domain.NewResourceNotFound("Cart", "cartId", cartID)
	}
	item := cart.ItemFor(productID)
	if item == nil {
		return nil, domain.NewResourceNotFound("Product", "productId", productID)
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	return s.refresh(ctx, principal.UserID)
}

func (s *CartService) SyncProduct(ctx context.Context, product *domain.Product) error {
	carts, err := s.carts.ListContainingProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	for _, c := range carts {
		item := c.ItemFor(product.ID)
		if item == nil {
			continue
		}
		if err := s.carts.UpdateItemPricing(ctx, item.ID, product.SpecialPrice, product.Discount); err != nil {
			return err
		}
		if _, err := s.refresh(ctx, c.UserID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CartService) PurgeProduct(ctx context.Context, productID uint) error {
	carts, err := s.carts.ListContainingProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, c := range carts {
		item := c.ItemFor(productID)
		if item == nil {
			continue
		}
		if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		if _, err := s.refresh(ctx, c.UserID); err != nil {
			return err
		}
	}
	return nil
}

// refresh reloads the cart and persists its recalculated total.
func (s *CartService) refresh(ctx context.Context, userID uint) (*domain.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Recalculate()
	if err := s.carts.UpdateTotal(ctx, cart.ID, cart.TotalPrice); err != nil {
		return nil, fmt.Errorf("update cart total: %w", err)
	}
	return cart, nil
}

func checkStock(p *domain.Product, quantity int) error {
	if p.Quantity == 0 {
		return domain.NewAPIError("%s is not available", p.Name)
	}
	if quantity > p.Quantity {
		return domain.NewAPIError("Please, make an order of the %s less than or equal to the quantity %d.", p.Name, p.Quantity)
	}
	return nil
}
