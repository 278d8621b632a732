package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// CartHandler handles shopping-cart requests. Every operation acts on the
// authenticated caller's own cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// AddProduct handles POST /api/carts/products/:productId/quantity/:quantity.
//
// @Summary      Add a product to the caller's cart
// @Tags         carts
// @Produce      json
// @Security     CookieAuth
// @Param        productId  path      int  true  "Product ID"
// @Param        quantity   path      int  true  "Quantity"
// @Success      201        {object}  cartResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/carts/products/{productId}/quantity/{quantity} [post]
func (h *CartHandler) AddProduct(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(c.Param("quantity"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := h.service.AddProduct(c.Request().Context(), p, productID, quantity)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("add_product").Inc()
	return c.JSON(http.StatusCreated, toCartResponse(cart))
}

// GetCart handles GET /api/carts/users/cart.
//
// @Summary      Get the caller's cart
// @Tags         carts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/carts/users/cart [get]
func (h *CartHandler) GetCart(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	cart, err := h.service.GetCart(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// ListCarts handles GET /api/carts.
//
// @Summary      List all carts
// @Tags         carts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}   cartResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/carts [get]
func (h *CartHandler) ListCarts(c echo.Context) error {
	carts, err := h.service.ListCarts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponses(carts))
}

// UpdateQuantity handles PUT /api/cart/products/:productId/quantity/:operation.
//
// @Summary      Increment or decrement a cart item
// @Tags         carts
// @Produce      json
// @Security     CookieAuth
// @Param        productId  path      int     true  "Product ID"
// @Param        operation  path      string  true  "add or delete"
// @Success      200        {object}  cartResponse
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/cart/products/{productId}/quantity/{operation} [put]
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	op := ports.CartOperation(c.Param("operation"))

	cart, err := h.service.UpdateQuantity(c.Request().Context(), p, productID, op)
	if err != nil {
		return err
	}
	if op == ports.CartOperationAdd {
		metrics.CartOperationsTotal.WithLabelValues("increment").Inc()
	} else {
		metrics.CartOperationsTotal.WithLabelValues("decrement").Inc()
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// RemoveProduct handles DELETE /api/carts/:cartId/product/:productId.
//
// @Summary      Remove a product from the caller's cart
// @Tags         carts
// @Produce      json
// @Security     CookieAuth
// @Param        cartId     path      int  true  "Cart ID"
// @Param        productId  path      int  true  "Product ID"
// @Success      200        {object}  cartResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/carts/{cartId}/product/{productId} [delete]
func (h *CartHandler) RemoveProduct(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	cartID, err := pathID(c, "cartId")
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}

	cart, err := h.service.RemoveProduct(c.Request().Context(), p, cartID, productID)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("remove_product").Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}
