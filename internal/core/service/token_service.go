package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// MinSecretBytes is the minimum decoded length of the HMAC signing secret.
const MinSecretBytes = 32

var errUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// CookieConfig controls how tokens are carried in cookies.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
}

// TokenConfig is loaded once at startup and never mutated.
type TokenConfig struct {
	Secret   []byte
	Lifetime time.Duration
	Cookie   CookieConfig
}

// TokenService issues and verifies HS256 bearer tokens and maps them onto
// cookies.
type TokenService struct {
	key      []byte
	lifetime time.Duration
	cookie   CookieConfig
	now      func() time.Time
}

var (
	_ ports.TokenIssuer         = (*TokenService)(nil)
	_ ports.TokenVerifier       = (*TokenService)(nil)
	_ ports.CredentialTransport = (*TokenService)(nil)
)

// DecodeSigningSecret decodes a base64 signing secret and enforces the
// minimum key size.
func DecodeSigningSecret(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("signing secret is empty")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if len(key) < MinSecretBytes {
		return nil, fmt.Errorf("signing secret must decode to at least %d bytes, got %d", MinSecretBytes, len(key))
	}
	return key, nil
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("token service: secret must be at least %d bytes", MinSecretBytes)
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New("token service: lifetime must be positive")
	}
	key := make([]byte, len(cfg.Secret))
	copy(key, cfg.Secret)
	return &TokenService{key: key, lifetime: cfg.Lifetime, cookie: cfg.Cookie, now: time.Now}, nil
}

// Issue signs {sub, iat, exp} for an already verified subject. Times are
// kept to the millisecond so exp is exactly iat plus the lifetime.
func (s *TokenService) Issue(subject string) (ports.Token, error) {
	if subject == "" {
		return ports.Token{}, errors.New("issue token: empty subject")
	}
	issuedAt := s.now().Truncate(time.Millisecond)
	expiresAt := issuedAt.Add(s.lifetime)

	claims := tokenClaims{
		Subject:   subject,
		IssuedAt:  numericDate{issuedAt},
		ExpiresAt: numericDate{expiresAt},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return ports.Token{}, fmt.Errorf("issue token: %w", err)
	}

	return ports.Token{
		Value:     signed,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of raw and returns its subject.
func (s *TokenService) Verify(raw string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", classifyTokenError(err)
	}
	if claims.Subject == "" {
		return "", &domain.TokenError{Kind: domain.TokenMalformed, Err: errors.New("missing subject")}
	}
	return claims.Subject, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %s", errUnsupportedAlgorithm, t.Method.Alg())
	}
	return s.key, nil
}

// classifyTokenError maps jwt parser errors onto token error kinds. The
// signature is checked before the claims, so a tampered expired token is
// reported as an invalid signature.
func classifyTokenError(err error) error {
	kind := domain.TokenMalformed
	switch {
	case errors.Is(err, errUnsupportedAlgorithm), errors.Is(err, jwt.ErrTokenUnverifiable):
		kind = domain.TokenUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		kind = domain.TokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		kind = domain.TokenExpired
	}
	return &domain.TokenError{Kind: kind, Err: err}
}

// Cookie wraps a token in the configured transport cookie.
func (s *TokenService) Cookie(token ports.Token) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie.Name,
		Value:    token.Value,
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		MaxAge:   cookieMaxAge(s.lifetime),
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// cookieMaxAge rounds up so a sub-second lifetime still sets Max-Age
// instead of producing a session cookie.
func cookieMaxAge(lifetime time.Duration) int {
	secs := lifetime / time.Second
	if lifetime%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// CleanCookie returns an empty cookie that makes the client drop the
// credential immediately (Max-Age=0).
func (s *TokenService) CleanCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		MaxAge:   -1,
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *TokenService) CookieName() string { return s.cookie.Name }

// tokenClaims carries the registered claims the service uses. iat and exp
// are encoded with millisecond fractions, which jwt.RegisteredClaims would
// truncate to whole seconds.
type tokenClaims struct {
	Subject   string      `json:"sub,omitempty"`
	IssuedAt  numericDate `json:"iat,omitzero"`
	ExpiresAt numericDate `json:"exp,omitzero"`
}

var _ jwt.Claims = tokenClaims{}

func (c tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt.numeric(), nil }
func (c tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt.numeric(), nil }
func (c tokenClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c tokenClaims) GetIssuer() (string, error)                   { return "", nil }
func (c tokenClaims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c tokenClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// numericDate is a JWT NumericDate with millisecond precision.
type numericDate struct{ time.Time }

func (d numericDate) numeric() *jwt.NumericDate {
	if d.IsZero() {
		return nil
	}
	return &jwt.NumericDate{Time: d.Time}
}

func (d numericDate) MarshalJSON() ([]byte, error) {
	ms := d.UnixMilli()
	return fmt.Appendf(nil, "%d.%03d", ms/1000, ms%1000), nil
}

func (d *numericDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = numericDate{}
		return nil
	}
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("numeric date: %w", err)
	}
	d.Time = time.UnixMilli(int64(math.Round(secs * 1000))).UTC()
	return nil
}
