package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// ClientMeta describes the HTTP client for the audit trail.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// SignupInput carries a signup request.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
	Client   ClientMeta
}

// SigninInput carries a signin request.
type SigninInput struct {
	Username string
	Password string
	Client   ClientMeta
}

// SigninResult is returned on successful authentication.
type SigninResult struct {
	User  *domain.User
	Token Token
}

// AuthService implements the signup, signin and request authentication flows.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Signin(ctx context.Context, in SigninInput) (*SigninResult, error)
	Signout(ctx context.Context, principal *domain.Principal, client ClientMeta)
	// Authenticate verifies a raw token and re-resolves the subject's current
	// roles from the credential store.
	Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error)
	CurrentUser(ctx context.Context, principal *domain.Principal) (*domain.User, error)
	AssignRoles(ctx context.Context, actor *domain.Principal, userID uint, labels []string) (*domain.User, error)
}
