package ports

import (
	"context"
	"io"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	Quantity    int
	Price       float64
	Discount    float64
}

// ImageUpload is a product image received from the client.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CatalogService implements category and product use cases.
type CatalogService interface {
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, q PageQuery) (Page[domain.Category], error)
	UpdateCategory(ctx context.Context, id uint, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) (*domain.Category, error)

	AddProduct(ctx context.Context, categoryID uint, in ProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context, q PageQuery) (Page[domain.Product], error)
	ListProductsByCategory(ctx context.Context, categoryID uint, q PageQuery) (Page[domain.Product], error)
	SearchProducts(ctx context.Context, keyword string, q PageQuery) (Page[domain.Product], error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) (*domain.Product, error)
	UpdateProductImage(ctx context.Context, id uint, img ImageUpload) (*domain.Product, error)
}

// ImageStore saves uploaded images and returns the stored file name.
type ImageStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
}
