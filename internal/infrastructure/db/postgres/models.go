package postgres

import "time"

// Unique index names, matched against constraint violations.
const (
	uqUsersUsername  = "uq_users_username"
	uqUsersEmail     = "uq_users_email"
	uqCategoriesName = "uq_categories_name"
	uqCartItemsLine  = "uq_cart_items_line"
)

type RoleModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:20;uniqueIndex;not null"`
}

func (RoleModel) TableName() string { return "roles" }

type UserModel struct {
	ID        uint        `gorm:"primaryKey"`
	Username  string      `gorm:"size:20;not null;uniqueIndex:uq_users_username"`
	Email     string      `gorm:"size:50;not null;uniqueIndex:uq_users_email"`
	Password  string      `gorm:"size:120;not null"`
	Roles     []RoleModel `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
	CreatedAt time.Time   `gorm:"not null"`
	UpdatedAt time.Time   `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type CategoryModel struct {
	ID       uint           `gorm:"primaryKey"`
	Name     string         `gorm:"not null;uniqueIndex:uq_categories_name"`
	Products []ProductModel `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (CategoryModel) TableName() string { return "categories" }

type ProductModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null;index"`
	Description  string
	Image        string  `gorm:"not null"`
	Quantity     int     `gorm:"not null"`
	Price        float64 `gorm:"not null"`
	Discount     float64 `gorm:"not null"`
	SpecialPrice float64 `gorm:"not null"`
	CategoryID   uint    `gorm:"index;not null"`
}

func (ProductModel) TableName() string { return "products" }

type CartModel struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"not null;uniqueIndex:uq_carts_user"`
	TotalPrice float64         `gorm:"not null"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (CartModel) TableName() string { return "carts" }

type CartItemModel struct {
	ID           uint         `gorm:"primaryKey"`
	CartID       uint         `gorm:"not null;uniqueIndex:uq_cart_items_line"`
	ProductID    uint         `gorm:"index;not null;uniqueIndex:uq_cart_items_line"`
	Product      ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity     int          `gorm:"not null"`
	Discount     float64      `gorm:"not null"`
	ProductPrice float64      `gorm:"not null"`
}

func (CartItemModel) TableName() string { return "cart_items" }
