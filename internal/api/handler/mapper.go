package handler

import (
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// --- Request → Service input ---

func toProductInput(req productRequest) ports.ProductInput {
	return ports.ProductInput{
		Name:        req.ProductName,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Discount:    req.Discount,
	}
}

// --- Domain → Response ---

func toPageResponse[T any](p ports.Page[T]) pageResponse[T] {
	content := p.Content
	if content == nil {
		content = []T{}
	}
	return pageResponse[T]{
		Content:       content,
		PageNumber:    p.Number,
		PageSize:      p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		LastPage:      p.LastPage,
	}
}

// toCartResponse reports each line with the price captured in the cart; the
// product's current stock is not exposed, the quantity is the line quantity.
func toCartResponse(c *domain.Cart) cartResponse {
	products := make([]cartProductResponse, 0, len(c.Items))
	for _, it := range c.Items {
		products = append(products, cartProductResponse{
			ProductID:    it.ProductID,
			ProductName:  it.Product.Name,
			Image:        it.Product.Image,
			Quantity:     it.Quantity,
			Price:        it.Product.Price,
			Discount:     it.Discount,
			SpecialPrice: it.ProductPrice,
		})
	}
	return cartResponse{CartID: c.ID, TotalPrice: c.TotalPrice, Products: products}
}

func toCartResponses(carts []domain.Cart) []cartResponse {
	out := make([]cartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, toCartResponse(&carts[i]))
	}
	return out
}
