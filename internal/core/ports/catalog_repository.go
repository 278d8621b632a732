package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID uint
	// Keyword is matched case-insensitively as a substring of the product name.
	Keyword string
}

// Sortable fields, in their JSON spelling.
var (
	CategorySortFields = []string{"categoryId", "categoryName"}
	ProductSortFields  = []string{"productId", "productName", "price", "specialPrice", "quantity", "discount"}
)

// CategoryRepository persists catalog categories. FindByID on a missing row
// returns a *domain.ResourceNotFoundError.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, q PageQuery) ([]domain.Category, int64, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id uint) error
}

// ProductRepository persists catalog products. FindByID on a missing row
// returns a *domain.ResourceNotFoundError.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	ExistsInCategory(ctx context.Context, categoryID uint, name string) (bool, error)
	List(ctx context.Context, filter ProductFilter, q PageQuery) ([]domain.Product, int64, error)
	IDsByCategory(ctx context.Context, categoryID uint) ([]uint, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id uint) error
}
