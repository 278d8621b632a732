package handler

import "github.com/ecomhub/storefront-api/internal/core/domain"

// messageResponse is the envelope for responses that only carry a message.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// --- Auth ---

type signupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=20"`
	Email    string   `json:"email"    validate:"required,email,max=50"`
	Password string   `json:"password" validate:"required,max=40,maxbytes=72"`
	Roles    []string `json:"role"`
}

type signinRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userInfoResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type assignRolesRequest struct {
	Roles []string `json:"roles"`
}

// --- Catalog ---

type categoryRequest struct {
	CategoryName string `json:"categoryName" validate:"required,max=50"`
}

type productRequest struct {
	ProductName string  `json:"productName" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	Quantity    int     `json:"quantity"    validate:"gte=0"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Discount    float64 `json:"discount"    validate:"gte=0,lte=100"`
}

// pageResponse is one page of a sorted listing.
type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	LastPage      bool  `json:"lastPage"`
}

// --- Cart ---

type cartProductResponse struct {
	ProductID    uint    `json:"productId"`
	ProductName  string  `json:"productName"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount"`
	SpecialPrice float64 `json:"specialPrice"`
}

type cartResponse struct {
	CartID     uint                  `json:"cartId"`
	TotalPrice float64               `json:"totalPrice"`
	Products   []cartProductResponse `json:"products"`
}

// userInfo is the signin and current-user body. Roles always serialise as an
// array.
func userInfo(u *domain.User) userInfoResponse {
	return userInfoResponse{ID: u.ID, Username: u.Username, Roles: u.RoleNames()}
}
