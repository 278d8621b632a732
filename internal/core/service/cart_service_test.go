package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub
// ---------------------------------------------------------------------------

type stubCartRepo struct {
	products   *stubProductRepo
	nextCartID uint
	nextItemID uint
	carts      map[uint]*domain.Cart // by cart id
	items      map[uint]*domain.CartItem

	// addItemErr simulates the store rejecting a line, as the unique
	// (cart, product) index does when a concurrent add wins.
	addItemErr error
}

func newStubCartRepo(products *stubProductRepo) *stubCartRepo {
	return &stubCartRepo{
		products: products,
		carts:    make(map[uint]*domain.Cart),
		items:    make(map[uint]*domain.CartItem),
	}
}

// load assembles a cart with its items and products, like a preloaded query.
func (r *stubCartRepo) load(c *domain.Cart) domain.Cart {
	out := *c
	out.Items = nil
	ids := make([]uint, 0)
	for id, it := range r.items {
		if it.CartID == c.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		it := *r.items[id]
		if p, ok := r.products.rows[it.ProductID]; ok {
			it.Product = p
		}
		out.Items = append(out.Items, it)
	}
	return out
}

func (r *stubCartRepo) FindByUserID(_ context.Context, userID uint) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.UserID == userID {
			loaded := r.load(c)
			return &loaded, nil
		}
	}
	return nil, domain.NewResourceNotFound("Cart", "userId", userID)
}

func (r *stubCartRepo) FindOrCreate(ctx context.Context, userID uint) (*domain.Cart, error) {
	if c, err := r.FindByUserID(ctx, userID); err == nil {
		return c, nil
	}
	r.nextCartID++
	c := &domain.Cart{ID: r.nextCartID, UserID: userID}
	r.carts[c.ID] = c
	loaded := r.load(c)
	return &loaded, nil
}

func (r *stubCartRepo) List(_ context.Context) ([]domain.Cart, error) {
	var out []domain.Cart
	for _, c := range r.carts {
		out = append(out, r.load(c))
	}
	return out, nil
}

func (r *stubCartRepo) ListContainingProduct(_ context.Context, productID uint) ([]domain.Cart, error) {
	var out []domain.Cart
	for _, c := range r.carts {
		loaded := r.load(c)
		if loaded.ItemFor(productID) != nil {
			out = append(out, loaded)
		}
	}
	return out, nil
}

func (r *stubCartRepo) AddItem(_ context.Context, item *domain.CartItem) error {
	if r.addItemErr != nil {
		return r.addItemErr
	}
	r.nextItemID++
	item.ID = r.nextItemID
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubCartRepo) UpdateItemQuantity(_ context.Context, itemID uint, quantity int) error {
	r.items[itemID].Quantity = quantity
	return nil
}

func (r *stubCartRepo) UpdateItemPricing(_ context.Context, itemID uint, price, discount float64) error {
	r.items[itemID].ProductPrice = price
	r.items[itemID].Discount = discount
	return nil
}

func (r *stubCartRepo) DeleteItem(_ context.Context, itemID uint) error {
	delete(r.items, itemID)
	return nil
}

func (r *stubCartRepo) UpdateTotal(_ context.Context, cartID uint, total float64) error {
	r.carts[cartID].TotalPrice = total
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type cartFixture struct {
	svc      *CartService
	carts    *stubCartRepo
	products *stubProductRepo
}

func newCartFixture() *cartFixture {
	products := newStubProductRepo()
	carts := newStubCartRepo(products)
	return &cartFixture{
		svc:      NewCartService(carts, products, discardLogger),
		carts:    carts,
		products: products,
	}
}

func (f *cartFixture) product(name string, qty int, price, discount float64) *domain.Product {
	p := &domain.Product{Name: name, Quantity: qty, Price: price, Discount: discount, CategoryID: 1}
	p.ApplyDiscount()
	_ = f.products.Create(context.Background(), p)
	return p
}

var (
	alice = &domain.Principal{UserID: 1, Username: "alice", Roles: []domain.Role{domain.RoleUser}}
	bob   = &domain.Principal{UserID: 2, Username: "bob", Roles: []domain.Role{domain.RoleUser}}
)

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCartService_AddProduct(t *testing.T) {
	f := newCartFixture()
	p := f.product("Headphones", 10, 200, 25)

	cart, err := f.svc.AddProduct(context.Background(), alice, p.ID, 3)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if cart.TotalPrice != 450 {
		t.Fatalf("total = %v, want 450", cart.TotalPrice)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductPrice != 150 || cart.Items[0].Discount != 25 {
		t.Fatalf("unexpected items %+v", cart.Items)
	}
	if cart.Items[0].Product.Name != "Headphones" {
		t.Fatalf("item product not loaded: %+v", cart.Items[0].Product)
	}
}

func TestCartService_AddProduct_Rejections(t *testing.T) {
	f := newCartFixture()
	p := f.product("Speaker", 2, 50, 0)
	soldOut := f.product("Vinyl", 0, 30, 0)

	if _, err := f.svc.AddProduct(context.Background(), nil, p.ID, 1); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, p.ID, 0); !isAPIError(err) {
		t.Fatalf("expected APIError for zero quantity, got %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, 999, 1); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, soldOut.ID, 1); !isAPIError(err) {
		t.Fatalf("expected APIError for sold-out product, got %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, p.ID, 3); !isAPIError(err) {
		t.Fatalf("expected APIError for quantity over stock, got %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, p.ID, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), alice, p.ID, 1); !isAPIError(err) {
		t.Fatalf("expected APIError for product already in cart, got %v", err)
	}
}

func TestCartService_AddProduct_ConcurrentDuplicateLine(t *testing.T) {
	f := newCartFixture()
	p := f.product("Keyboard", 5, 80, 0)
	f.carts.addItemErr = domain.ErrDuplicateCartItem

	_, err := f.svc.AddProduct(context.Background(), alice, p.ID, 1)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Product Keyboard already exists in the cart" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestCartService_GetCart(t *testing.T) {
	f := newCartFixture()
	p := f.product("Speaker", 5, 50, 0)

	if _, err := f.svc.GetCart(context.Background(), alice); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound before first add, got %v", err)
	}
	_, _ = f.svc.AddProduct(context.Background(), alice, p.ID, 1)

	cart, err := f.svc.GetCart(context.Background(), alice)
	if err != nil || len(cart.Items) != 1 {
		t.Fatalf("GetCart: %v %+v", err, cart)
	}
	if _, err := f.svc.GetCart(context.Background(), bob); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("bob must not see alice's cart, got %v", err)
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	f := newCartFixture()
	p := f.product("Speaker", 2, 10, 0)
	_, _ = f.svc.AddProduct(context.Background(), alice, p.ID, 1)

	cart, err := f.svc.UpdateQuantity(context.Background(), alice, p.ID, ports.CartOperationAdd)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if cart.Items[0].Quantity != 2 || cart.TotalPrice != 20 {
		t.Fatalf("after add: %+v", cart)
	}

	if _, err := f.svc.UpdateQuantity(context.Background(), alice, p.ID, ports.CartOperationAdd); !isAPIError(err) {
		t.Fatalf("expected stock APIError, got %v", err)
	}
	if _, err := f.svc.UpdateQuantity(context.Background(), alice, p.ID, "double"); !isAPIError(err) {
		t.Fatalf("expected APIError for unknown op, got %v", err)
	}

	_, _ = f.svc.UpdateQuantity(context.Background(), alice, p.ID, ports.CartOperationDelete)
	cart, err = f.svc.UpdateQuantity(context.Background(), alice, p.ID, ports.CartOperationDelete)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalPrice != 0 {
		t.Fatalf("item should be removed at zero: %+v", cart)
	}

	if _, err := f.svc.UpdateQuantity(context.Background(), alice, p.ID, ports.CartOperationDelete); !isAPIError(err) {
		t.Fatalf("expected APIError for product not in cart, got %v", err)
	}
}

func TestCartService_RemoveProduct(t *testing.T) {
	f := newCartFixture()
	p := f.product("Speaker", 5, 10, 0)
	q := f.product("Cable", 5, 2.5, 0)
	_, _ = f.svc.AddProduct(context.Background(), alice, p.ID, 1)
	aliceCart, _ := f.svc.AddProduct(context.Background(), alice, q.ID, 2)
	bobCart, _ := f.svc.AddProduct(context.Background(), bob, p.ID, 1)

	if _, err := f.svc.RemoveProduct(context.Background(), alice, bobCart.ID, p.ID); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("alice must not touch bob's cart, got %v", err)
	}

	cart, err := f.svc.RemoveProduct(context.Background(), alice, aliceCart.ID, p.ID)
	if err != nil {
		t.Fatalf("RemoveProduct: %v", err)
	}
	if len(cart.Items) != 1 || cart.TotalPrice != 5 {
		t.Fatalf("after remove: %+v", cart)
	}
	if _, err := f.svc.RemoveProduct(context.Background(), alice, aliceCart.ID, p.ID); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound for missing item, got %v", err)
	}

	bobs, _ := f.svc.GetCart(context.Background(), bob)
	if len(bobs.Items) != 1 {
		t.Fatalf("bob's cart changed: %+v", bobs)
	}
}

func TestCartService_ListCarts(t *testing.T) {
	f := newCartFixture()
	carts, err := f.svc.ListCarts(context.Background())
	if err != nil || carts == nil || len(carts) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %#v", err, carts)
	}

	p := f.product("Speaker", 5, 10, 0)
	_, _ = f.svc.AddProduct(context.Background(), alice, p.ID, 1)
	_, _ = f.svc.AddProduct(context.Background(), bob, p.ID, 1)
	carts, _ = f.svc.ListCarts(context.Background())
	if len(carts) != 2 {
		t.Fatalf("expected 2 carts, got %d", len(carts))
	}
}
