package ports

import (
	"net/http"
	"time"
)

// Token is a signed bearer token and the claims it was minted with.
type Token struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints tokens for verified identities.
type TokenIssuer interface {
	Issue(subject string) (Token, error)
}

// TokenVerifier recovers the subject from a raw token. Errors are
// *domain.TokenError.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// CredentialTransport serializes tokens into cookies and back.
type CredentialTransport interface {
	Cookie(token Token) *http.Cookie
	CleanCookie() *http.Cookie
	CookieName() string
}
