package domain

import "math"

// Cart belongs to exactly one user.
type Cart struct {
	ID         uint       `json:"cartId"`
	UserID     uint       `json:"userId"`
	TotalPrice float64    `json:"totalPrice"`
	Items      []CartItem `json:"items"`
}

// CartItem is a product line in a cart. Price and discount are captured when
// the item is added.
type CartItem struct {
	ID           uint    `json:"cartItemId"`
	CartID       uint    `json:"cartId"`
	ProductID    uint    `json:"productId"`
	Product      Product `json:"product"`
	Quantity     int     `json:"quantity"`
	Discount     float64 `json:"discount"`
	ProductPrice float64 `json:"productPrice"`
}

// ItemFor returns the item holding productID, or nil.
func (c *Cart) ItemFor(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Recalculate sets TotalPrice to the sum of item lines.
func (c *Cart) Recalculate() {
	var total float64
	for _, it := range c.Items {
		total += it.ProductPrice * float64(it.Quantity)
	}
	c.TotalPrice = math.Round(total*100) / 100
}
