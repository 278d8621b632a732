package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type CartRepository struct {
	db *gorm.DB
}

var _ ports.CartRepository = (*CartRepository)(nil)

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product")
}

func (r *CartRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Cart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CartModel
	if err := r.withItems(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewResourceNotFound("Cart", "userId", userID)
		}
		return nil, err
	}
	return cartFromModel(model), nil
}

// FindOrCreate relies on the unique user_id index so concurrent first adds
// converge on a single cart.
func (r *CartRepository) FindOrCreate(ctx context.Context, userID uint) (*domain.Cart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&CartModel{UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

func (r *CartRepository) List(ctx context.Context) ([]domain.Cart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CartModel
	if err := r.withItems(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return cartsFromModels(models), nil
}

func (r *CartRepository) ListContainingProduct(ctx context.Context, productID uint) ([]domain.Cart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CartModel
	err := r.withItems(ctx).
		Where("id IN (?)", r.db.Model(&CartItemModel{}).Select("cart_id").Where("product_id = ?", productID)).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return cartsFromModels(models), nil
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := CartItemModel{
		CartID:       item.CartID,
		ProductID:    item.ProductID,
		Quantity:     item.Quantity,
		Discount:     item.Discount,
		ProductPrice: item.ProductPrice,
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(&model).Error; err != nil {
		if violatedConstraint(err) == uqCartItemsLine {
			return domain.ErrDuplicateCartItem
		}
		return err
	}
	item.ID = model.ID
	return nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&CartItemModel{ID: itemID}).Update("quantity", quantity).Error
}

func (r *CartRepository) UpdateItemPricing(ctx context.Context, itemID uint, price, discount float64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&CartItemModel{ID: itemID}).Updates(map[string]any{
		"product_price": price,
		"discount":      discount,
	}).Error
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Delete(&CartItemModel{}, itemID).Error
}

func (r *CartRepository) UpdateTotal(ctx context.Context, cartID uint, total float64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&CartModel{ID: cartID}).Update("total_price", total).Error
}

func cartsFromModels(models []CartModel) []domain.Cart {
	out := make([]domain.Cart, 0, len(models))
	for _, m := range models {
		out = append(out, *cartFromModel(m))
	}
	return out
}

func cartFromModel(m CartModel) *domain.Cart {
	items := make([]domain.CartItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.CartItem{
			ID:           it.ID,
			CartID:       it.CartID,
			ProductID:    it.ProductID,
			Product:      *productFromModel(it.Product),
			Quantity:     it.Quantity,
			Discount:     it.Discount,
			ProductPrice: it.ProductPrice,
		})
	}
	return &domain.Cart{
		ID:         m.ID,
		UserID:     m.UserID,
		TotalPrice: m.TotalPrice,
		Items:      items,
	}
}
