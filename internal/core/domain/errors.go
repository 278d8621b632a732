package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBadCredentials    = errors.New("bad credentials")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email is already taken")
	ErrRoleNotFound      = errors.New("role is not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("access forbidden")
	ErrRateLimited       = errors.New("too many requests")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrDuplicateCartItem = errors.New("product already in cart")
)

// ResourceNotFoundError reports a missing catalog or cart entity looked up by
// a single field. It matches ErrResourceNotFound with errors.Is.
type ResourceNotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func NewResourceNotFound(resource, field string, value any) *ResourceNotFoundError {
	return &ResourceNotFoundError{Resource: resource, Field: field, Value: value}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

func (e *ResourceNotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}

// APIError is a business-rule rejection whose message is safe to show to the
// client as-is.
type APIError struct {
	Message string
}

func NewAPIError(format string, args ...any) *APIError {
	return &APIError{Message: fmt.Sprintf(format, args...)}
}

func (e *APIError) Error() string { return e.Message }
