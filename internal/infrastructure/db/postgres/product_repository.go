package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type ProductRepository struct {
	db *gorm.DB
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := productToModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ProductModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewResourceNotFound("Product", "productId", id)
		}
		return nil, err
	}
	return productFromModel(model), nil
}

func (r *ProductRepository) ExistsInCategory(ctx context.Context, categoryID uint, name string) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("category_id = ? AND name = ?", categoryID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter, q ports.PageQuery) ([]domain.Product, int64, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	filtered := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&ProductModel{})
		if f.CategoryID != 0 {
			db = db.Where("category_id = ?", f.CategoryID)
		}
		if f.Keyword != "" {
			db = db.Where("name ILIKE ?", "%"+escapeLike(f.Keyword)+"%")
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []ProductModel
	if err := paginate(filtered(), q, productColumns).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Product, 0, len(models))
	for _, m := range models {
		out = append(out, *productFromModel(m))
	}
	return out, total, nil
}

func (r *ProductRepository) IDsByCategory(ctx context.Context, categoryID uint) ([]uint, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("category_id = ?", categoryID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := productToModel(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Delete(&ProductModel{}, id).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func productToModel(p *domain.Product) ProductModel {
	return ProductModel{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Image:        p.Image,
		Quantity:     p.Quantity,
		Price:        p.Price,
		Discount:     p.Discount,
		SpecialPrice: p.SpecialPrice,
		CategoryID:   p.CategoryID,
	}
}

func productFromModel(m ProductModel) *domain.Product {
	return &domain.Product{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Image:        m.Image,
		Quantity:     m.Quantity,
		Price:        m.Price,
		Discount:     m.Discount,
		SpecialPrice: m.SpecialPrice,
		CategoryID:   m.CategoryID,
	}
}
