package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// CatalogHandler handles category and product requests.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// --- Categories ---

// CreateCategory handles POST /api/admin/categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      categoryRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/admin/categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cat, err := h.service.CreateCategory(c.Request().Context(), req.CategoryName)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("category", "create").Inc()
	return c.JSON(http.StatusCreated, cat)
}

// ListCategories handles GET /api/public/categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        pageNumber  query     int     false  "0-based page number"
// @Param        pageSize    query     int     false  "Page size (max 100)"
// @Param        sortBy      query     string  false  "categoryId or categoryName"
// @Param        sortOrder   query     string  false  "asc or desc"
// @Success      200         {object}  pageResponse[domain.Category]
// @Failure      400         {object}  errorResponse
// @Router       /api/public/categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListCategories(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// UpdateCategory handles PUT /api/admin/categories/:categoryId.
//
// @Summary      Rename a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        categoryId  path      int              true  "Category ID"
// @Param        body        body      categoryRequest  true  "Category"
// @Success      200         {object}  domain.Category
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /api/admin/categories/{categoryId} [put]
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "categoryId")
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cat, err := h.service.UpdateCategory(c.Request().Context(), id, req.CategoryName)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("category", "update").Inc()
	return c.JSON(http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/admin/categories/:categoryId.
//
// @Summary      Delete a category and its products
// @Tags         categories
// @Produce      json
// @Security     CookieAuth
// @Param        categoryId  path      int  true  "Category ID"
// @Success      200         {object}  domain.Category
// @Failure      404         {object}  errorResponse
// @Router       /api/admin/categories/{categoryId} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "categoryId")
	if err != nil {
		return err
	}
	cat, err := h.service.DeleteCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("category", "delete").Inc()
	return c.JSON(http.StatusOK, cat)
}

// --- Products ---

// AddProduct handles POST /api/admin/categories/:categoryId/product.
//
// @Summary      Add a product to a category
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        categoryId  path      int             true  "Category ID"
// @Param        body        body      productRequest  true  "Product"
// @Success      201         {object}  domain.Product
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /api/admin/categories/{categoryId}/product [post]
func (h *CatalogHandler) AddProduct(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.AddProduct(c.Request().Context(), categoryID, toProductInput(req))
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("product", "create").Inc()
	return c.JSON(http.StatusCreated, p)
}

// ListProducts handles GET /api/public/products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        pageNumber  query     int     false  "0-based page number"
// @Param        pageSize    query     int     false  "Page size (max 100)"
// @Param        sortBy      query     string  false  "productId, productName, price, specialPrice, quantity or discount"
// @Param        sortOrder   query     string  false  "asc or desc"
// @Success      200         {object}  pageResponse[domain.Product]
// @Failure      400         {object}  errorResponse
// @Router       /api/public/products [get]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// ListProductsByCategory handles GET /api/public/categories/:categoryId/products.
//
// @Summary      List products of a category
// @Tags         products
// @Produce      json
// @Param        categoryId  path      int     true   "Category ID"
// @Param        pageNumber  query     int     false  "0-based page number"
// @Param        pageSize    query     int     false  "Page size (max 100)"
// @Param        sortBy      query     string  false  "Sort field"
// @Param        sortOrder   query     string  false  "asc or desc"
// @Success      200         {object}  pageResponse[domain.Product]
// @Failure      404         {object}  errorResponse
// @Router       /api/public/categories/{categoryId}/products [get]
func (h *CatalogHandler) ListProductsByCategory(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return err
	}
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListProductsByCategory(c.Request().Context(), categoryID, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// SearchProducts handles GET /api/public/products/keyword/:keyword.
//
// @Summary      Search products by keyword
// @Tags         products
// @Produce      json
// @Param        keyword     path      string  true   "Case-insensitive name fragment"
// @Param        pageNumber  query     int     false  "0-based page number"
// @Param        pageSize    query     int     false  "Page size (max 100)"
// @Param        sortBy      query     string  false  "Sort field"
// @Param        sortOrder   query     string  false  "asc or desc"
// @Success      200         {object}  pageResponse[domain.Product]
// @Failure      400         {object}  errorResponse
// @Router       /api/public/products/keyword/{keyword} [get]
func (h *CatalogHandler) SearchProducts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.SearchProducts(c.Request().Context(), c.Param("keyword"), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// UpdateProduct handles PUT /api/admin/products/:productId.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        productId  path      int             true  "Product ID"
// @Param        body       body      productRequest  true  "Product"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/admin/products/{productId} [put]
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.UpdateProduct(c.Request().Context(), id, toProductInput(req))
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("product", "update").Inc()
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/admin/products/:productId.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     CookieAuth
// @Param        productId  path      int  true  "Product ID"
// @Success      200        {object}  domain.Product
// @Failure      404        {object}  errorResponse
// @Router       /api/admin/products/{productId} [delete]
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	p, err := h.service.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("product", "delete").Inc()
	return c.JSON(http.StatusOK, p)
}

// UpdateProductImage handles PUT /api/admin/products/:productId/image.
//
// @Summary      Upload a product image
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        productId  path      int   true  "Product ID"
// @Param        image      formData  file  true  "Image file"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/admin/products/{productId}/image [put]
func (h *CatalogHandler) UpdateProductImage(c echo.Context) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := h.service.UpdateProductImage(c.Request().Context(), id, ports.ImageUpload{
		Filename: fh.Filename,
		Content:  f,
	})
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("product", "image").Inc()
	return c.JSON(http.StatusOK, p)
}
