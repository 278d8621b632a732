package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type RoleRepository struct {
	db *gorm.DB
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) FindByName(ctx context.Context, role domain.Role) (domain.Role, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	var model RoleModel
	err := r.db.WithContext(ctx).Where("name = ?", role.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrRoleNotFound
		}
		return "", err
	}
	return domain.Role(model.Name), nil
}
