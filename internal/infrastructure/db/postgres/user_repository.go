package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type UserRepository struct {
	db *gorm.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userFromModel(model), nil
}

// Create inserts the user and links it to existing role rows. Unique
// violations on username or email are reported as the matching domain error.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	model := UserModel{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles, err := loadRoles(tx, user.Roles)
		if err != nil {
			return err
		}
		model.Roles = roles
		return tx.Omit("Roles.*").Create(&model).Error
	})
	if err != nil {
		switch violatedConstraint(err) {
		case uqUsersUsername:
			return nil, domain.ErrDuplicateUsername
		case uqUsersEmail:
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return userFromModel(model), nil
}

func (r *UserRepository) ReplaceRoles(ctx context.Context, userID uint, roles []domain.Role) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.First(&model, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		rows, err := loadRoles(tx, roles)
		if err != nil {
			return err
		}
		return tx.Model(&model).Omit("Roles.*").Association("Roles").Replace(rows)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID)
}

// loadRoles fetches role rows in the order of roles.
func loadRoles(tx *gorm.DB, roles []domain.Role) ([]RoleModel, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	var rows []RoleModel
	if err := tx.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]RoleModel, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	ordered := make([]RoleModel, 0, len(names))
	for _, n := range names {
		row, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrRoleNotFound, n)
		}
		ordered = append(ordered, row)
	}
	return ordered, nil
}

func userFromModel(m UserModel) *domain.User {
	roles := make([]domain.Role, 0, len(m.Roles))
	for _, r := range m.Roles {
		roles = append(roles, domain.Role(r.Name))
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.Password,
		Roles:        roles,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
