package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type stubCatalogService struct {
	ports.CatalogService
	createCategoryFn func(ctx context.Context, name string) (*domain.Category, error)
	listCategoriesFn func(ctx context.Context, q ports.PageQuery) (ports.Page[domain.Category], error)
	addProductFn     func(ctx context.Context, categoryID uint, in ports.ProductInput) (*domain.Product, error)
	byCategoryFn     func(ctx context.Context, categoryID uint, q ports.PageQuery) (ports.Page[domain.Product], error)
	searchFn         func(ctx context.Context, keyword string, q ports.PageQuery) (ports.Page[domain.Product], error)
	deleteProductFn  func(ctx context.Context, id uint) (*domain.Product, error)
	imageFn          func(ctx context.Context, id uint, img ports.ImageUpload) (*domain.Product, error)
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	return s.createCategoryFn(ctx, name)
}

func (s *stubCatalogService) ListCategories(ctx context.Context, q ports.PageQuery) (ports.Page[domain.Category], error) {
	return s.listCategoriesFn(ctx, q)
}

func (s *stubCatalogService) AddProduct(ctx context.Context, categoryID uint, in ports.ProductInput) (*domain.Product, error) {
	return s.addProductFn(ctx, categoryID, in)
}

func (s *stubCatalogService) ListProductsByCategory(ctx context.Context, categoryID uint, q ports.PageQuery) (ports.Page[domain.Product], error) {
	return s.byCategoryFn(ctx, categoryID, q)
}

func (s *stubCatalogService) SearchProducts(ctx context.Context, keyword string, q ports.PageQuery) (ports.Page[domain.Product], error) {
	return s.searchFn(ctx, keyword, q)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.deleteProductFn(ctx, id)
}

func (s *stubCatalogService) UpdateProductImage(ctx context.Context, id uint, img ports.ImageUpload) (*domain.Product, error) {
	return s.imageFn(ctx, id, img)
}

func TestCatalogHandler_CreateCategory(t *testing.T) {
	stub := &stubCatalogService{
		createCategoryFn: func(_ context.Context, name string) (*domain.Category, error) {
			return &domain.Category{ID: 3, Name: name}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/admin/categories", `{"categoryName":"Books"}`, admin)
	if err := NewCatalogHandler(stub).CreateCategory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["categoryId"] != float64(3) || resp["categoryName"] != "Books" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestCatalogHandler_CreateCategory_RequiresName(t *testing.T) {
	stub := &stubCatalogService{}
	c, _ := newContext(http.MethodPost, "/api/admin/categories", `{}`, admin)
	if err := NewCatalogHandler(stub).CreateCategory(c); httpStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCatalogHandler_ListCategories_PagingParams(t *testing.T) {
	var got ports.PageQuery
	stub := &stubCatalogService{
		listCategoriesFn: func(_ context.Context, q ports.PageQuery) (ports.Page[domain.Category], error) {
			got = q
			return ports.NewPage[domain.Category](nil, ports.PageQuery{Number: 2, Size: 10}, 0), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/public/categories?pageNumber=2&pageSize=10&sortBy=categoryName&sortOrder=desc", "", nil)
	if err := NewCatalogHandler(stub).ListCategories(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Number != 2 || got.Size != 10 || got.SortBy != "categoryName" || got.SortOrder != "desc" {
		t.Fatalf("unexpected query: %+v", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	content, ok := resp["content"].([]any)
	if !ok || len(content) != 0 {
		t.Fatalf("empty listing must render content as []: %v", resp["content"])
	}
	for _, key := range []string{"pageNumber", "pageSize", "totalElements", "totalPages", "lastPage"} {
		if _, ok := resp[key]; !ok {
			t.Fatalf("missing %q in %v", key, resp)
		}
	}
}

func TestCatalogHandler_ListCategories_BadPageNumber(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/public/categories?pageNumber=abc", "", nil)
	if err := NewCatalogHandler(&stubCatalogService{}).ListCategories(c); httpStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCatalogHandler_AddProduct(t *testing.T) {
	stub := &stubCatalogService{
		addProductFn: func(_ context.Context, categoryID uint, in ports.ProductInput) (*domain.Product, error) {
			if categoryID != 4 || in.Name != "Go Book" || in.Price != 40 || in.Discount != 25 {
				t.Fatalf("unexpected input: %d %+v", categoryID, in)
			}
			p := &domain.Product{ID: 11, Name: in.Name, Price: in.Price, Discount: in.Discount, CategoryID: categoryID, Image: domain.DefaultProductImage}
			p.ApplyDiscount()
			return p, nil
		},
	}
	body := `{"productName":"Go Book","description":"learn go","quantity":5,"price":40,"discount":25}`
	c, rec := newContext(http.MethodPost, "/api/admin/categories/4/product", body, admin, "categoryId", "4")
	if err := NewCatalogHandler(stub).AddProduct(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.SpecialPrice != 30 || resp.Image != "default.png" {
		t.Fatalf("unexpected product: %+v", resp)
	}
}

func TestCatalogHandler_AddProduct_Validation(t *testing.T) {
	cases := map[string]string{
		"missing name":      `{"price":10}`,
		"negative price":    `{"productName":"x","price":-1}`,
		"discount over 100": `{"productName":"x","price":1,"discount":101}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/admin/categories/4/product", body, admin, "categoryId", "4")
			if err := NewCatalogHandler(&stubCatalogService{}).AddProduct(c); httpStatus(err) != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestCatalogHandler_ListProductsByCategory_NotFound(t *testing.T) {
	stub := &stubCatalogService{
		byCategoryFn: func(_ context.Context, id uint, _ ports.PageQuery) (ports.Page[domain.Product], error) {
			return ports.Page[domain.Product]{}, domain.NewResourceNotFound("Category", "categoryId", id)
		},
	}
	c, _ := newContext(http.MethodGet, "/api/public/categories/99/products", "", nil, "categoryId", "99")
	err := NewCatalogHandler(stub).ListProductsByCategory(c)
	if !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogHandler_SearchProducts_PassesKeyword(t *testing.T) {
	var keyword string
	stub := &stubCatalogService{
		searchFn: func(_ context.Context, kw string, q ports.PageQuery) (ports.Page[domain.Product], error) {
			keyword = kw
			return ports.NewPage([]domain.Product{{ID: 1, Name: "Gopher Mug"}}, ports.PageQuery{Size: 50}, 1), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/public/products/keyword/mug", "", nil, "keyword", "mug")
	if err := NewCatalogHandler(stub).SearchProducts(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if keyword != "mug" {
		t.Fatalf("keyword = %q", keyword)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCatalogHandler_DeleteProduct_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodDelete, "/api/admin/products/0", "", admin, "productId", "0")
	if err := NewCatalogHandler(&stubCatalogService{}).DeleteProduct(c); httpStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCatalogHandler_UpdateProductImage(t *testing.T) {
	var upload []byte
	var filename string
	stub := &stubCatalogService{
		imageFn: func(_ context.Context, id uint, img ports.ImageUpload) (*domain.Product, error) {
			filename = img.Filename
			upload, _ = io.ReadAll(img.Content)
			return &domain.Product{ID: id, Image: "abc123.png"}, nil
		},
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "mug.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/7/image", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("productId")
	c.SetParamValues("7")

	if err := NewCatalogHandler(stub).UpdateProductImage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if filename != "mug.png" || string(upload) != "png-bytes" {
		t.Fatalf("upload not forwarded: %q %q", filename, upload)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCatalogHandler_UpdateProductImage_MissingFile(t *testing.T) {
	c, _ := newContext(http.MethodPut, "/api/admin/products/7/image", `{}`, admin, "productId", "7")
	if err := NewCatalogHandler(&stubCatalogService{}).UpdateProductImage(c); httpStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
