package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// CatalogService manages categories and products.
type CatalogService struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
	images     ports.ImageStore
	carts      ports.ProductCartSync
	logger     zerolog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(
	categories ports.CategoryRepository,
	products ports.ProductRepository,
	images ports.ImageStore,
	carts ports.ProductCartSync,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		images:     images,
		carts:      carts,
		logger:     logger,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	exists, err := s.categories.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if exists {
		return nil, domain.NewAPIError("Category with the name %s already exists !!!", name)
	}

	c := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info().Uint("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, q ports.PageQuery) (ports.Page[domain.Category], error) {
	q, err := normalizePage(q, ports.CategorySortFields, "categoryId")
	if err != nil {
		return ports.Page[domain.Category]{}, err
	}
	items, total, err := s.categories.List(ctx, q)
	if err != nil {
		return ports.Page[domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return ports.NewPage(items, q, total), nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name != c.Name {
		exists, err := s.categories.ExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		if exists {
			return nil, domain.NewAPIError("Category with the name %s already exists !!!", name)
		}
	}

	c.Name = name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes the category and its products, pulling those
// products out of every cart first.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.products.IDsByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	for _, pid := range ids {
		if err := s.carts.PurgeProduct(ctx, pid); err != nil {
			return nil, fmt.Errorf("delete category: purge product %d: %w", pid, err)
		}
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	s.logger.Info().Uint("category_id", id).Int("products", len(ids)).Msg("category deleted")
	return c, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, categoryID uint, in ports.ProductInput) (*domain.Product, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}

	exists, err := s.products.ExistsInCategory(ctx, categoryID, in.Name)
	if err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	if exists {
		return nil, domain.NewAPIError("Product already exists!!!")
	}

	p := &domain.Product{CategoryID: categoryID, Image: domain.DefaultProductImage}
	applyProductInput(p, in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	s.logger.Info().Uint("product_id", p.ID).Uint("category_id", categoryID).Msg("product created")
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ports.PageQuery) (ports.Page[domain.Product], error) {
	return s.listProducts(ctx, ports.ProductFilter{}, q)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID uint, q ports.PageQuery) (ports.Page[domain.Product], error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return ports.Page[domain.Product]{}, err
	}
	return s.listProducts(ctx, ports.ProductFilter{CategoryID: categoryID}, q)
}

func (s *CatalogService) SearchProducts(ctx context.Context, keyword string, q ports.PageQuery) (ports.Page[domain.Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ports.Page[domain.Product]{}, domain.NewAPIError("keyword must not be empty")
	}
	return s.listProducts(ctx, ports.ProductFilter{Keyword: keyword}, q)
}

func (s *CatalogService) listProducts(ctx context.Context, f ports.ProductFilter, q ports.PageQuery) (ports.Page[domain.Product], error) {
	q, err := normalizePage(q, ports.ProductSortFields, "productId")
	if err != nil {
		return ports.Page[domain.Product]{}, err
	}
	items, total, err := s.products.List(ctx, f, q)
	if err != nil {
		return ports.Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return ports.NewPage(items, q, total), nil
}

// UpdateProduct overwrites the writable fields and re-prices carts holding
// the product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ports.ProductInput) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProductInput(p, in)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := s.carts.SyncProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: sync carts: %w", err)
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.carts.PurgeProduct(ctx, id); err != nil {
		return nil, fmt.Errorf("delete product: purge carts: %w", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	s.logger.Info().Uint("product_id", id).Msg("product deleted")
	return p, nil
}

func (s *CatalogService) UpdateProductImage(ctx context.Context, id uint, img ports.ImageUpload) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.images.Save(ctx, img.Filename, img.Content)
	if err != nil {
		return nil, fmt.Errorf("update product image: %w", err)
	}
	p.Image = name
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product image: %w", err)
	}
	s.logger.Info().Uint("product_id", id).Str("image", name).Msg("product image updated")
	return p, nil
}

func applyProductInput(p *domain.Product, in ports.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Quantity = in.Quantity
	p.Price = in.Price
	p.Discount = in.Discount
	p.ApplyDiscount()
}
