package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type CategoryRepository struct {
	db *gorm.DB
}

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := CategoryModel{Name: c.Name}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if violatedConstraint(err) == uqCategoriesName {
			return domain.NewAPIError("Category with the name %s already exists !!!", c.Name)
		}
		return err
	}
	c.ID = model.ID
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CategoryModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewResourceNotFound("Category", "categoryId", id)
		}
		return nil, err
	}
	return &domain.Category{ID: model.ID, Name: model.Name}, nil
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&CategoryModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepository) List(ctx context.Context, q ports.PageQuery) ([]domain.Category, int64, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&CategoryModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []CategoryModel
	if err := paginate(r.db.WithContext(ctx), q, categoryColumns).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Category, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Category{ID: m.ID, Name: m.Name})
	}
	return out, total, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Model(&CategoryModel{ID: c.ID}).Update("name", c.Name).Error
	if violatedConstraint(err) == uqCategoriesName {
		return domain.NewAPIError("Category with the name %s already exists !!!", c.Name)
	}
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Delete(&CategoryModel{}, id).Error
}
