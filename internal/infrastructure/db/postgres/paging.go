package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecomhub/storefront-api/internal/core/ports"
)

var (
	categoryColumns = map[string]string{
		"categoryId":   "id",
		"categoryName": "name",
	}
	productColumns = map[string]string{
		"productId":    "id",
		"productName":  "name",
		"price":        "price",
		"specialPrice": "special_price",
		"quantity":     "quantity",
		"discount":     "discount",
	}
)

// paginate applies ORDER BY, LIMIT and OFFSET. Unknown sort fields fall back
// to the primary key; the service layer has already rejected them.
func paginate(db *gorm.DB, q ports.PageQuery, columns map[string]string) *gorm.DB {
	col, ok := columns[q.SortBy]
	if !ok {
		col = "id"
	}
	order := clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.SortOrder == "desc"}
	db = db.Order(order)
	if col != "id" {
		db = db.Order("id")
	}
	return db.Limit(q.Size).Offset(q.Number * q.Size)
}
