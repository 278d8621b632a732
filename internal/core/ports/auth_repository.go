package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must return
// domain.ErrDuplicateUsername / domain.ErrDuplicateEmail when a write hits the
// corresponding uniqueness constraint, and domain.ErrUserNotFound on misses.
type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// ReplaceRoles overwrites the user's role set.
	ReplaceRoles(ctx context.Context, userID uint, roles []domain.Role) (*domain.User, error)
}

// RoleRepository exposes the seeded role reference data.
type RoleRepository interface {
	// FindByName returns domain.ErrRoleNotFound when the role row is missing.
	FindByName(ctx context.Context, role domain.Role) (domain.Role, error)
}
