package domain

import "math"

// DefaultProductImage is assigned to every product until an image is uploaded.
const DefaultProductImage = "default.png"

// Category groups products in the catalog.
type Category struct {
	ID   uint   `json:"categoryId"`
	Name string `json:"categoryName"`
}

// Product is a sellable catalog item.
type Product struct {
	ID           uint    `json:"productId"`
	Name         string  `json:"productName"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount"`
	SpecialPrice float64 `json:"specialPrice"`
	CategoryID   uint    `json:"categoryId"`
}

// ApplyDiscount recomputes SpecialPrice from Price and the Discount percentage.
func (p *Product) ApplyDiscount() {
	p.SpecialPrice = SpecialPrice(p.Price, p.Discount)
}

// SpecialPrice returns price reduced by discount percent, rounded to cents.
func SpecialPrice(price, discount float64) float64 {
	special := price - (discount*0.01)*price
	return math.Round(special*100) / 100
}
