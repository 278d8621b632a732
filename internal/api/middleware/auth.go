package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

const principalKey = "principal"

// Principal returns the authenticated caller, or nil for anonymous requests.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// SetPrincipal attaches the authenticated caller to the request.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// Authenticate resolves the request credential into a Principal. The cookie
// is read first and the Authorization bearer header second. Requests with no
// credential, or with one that fails verification, continue as anonymous;
// routes that need a caller are guarded by RequireAuth.
func Authenticate(auth ports.AuthService, transport ports.CredentialTransport, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := credential(c.Request(), transport.CookieName())
			if raw == "" {
				return next(c)
			}

			p, err := auth.Authenticate(c.Request().Context(), raw)
			switch {
			case err == nil:
				SetPrincipal(c, p)
			case errors.Is(err, domain.ErrInvalidToken):
				kind := domain.TokenErrorKindOf(err)
				metrics.TokenRejectionsTotal.WithLabelValues(string(kind)).Inc()
				log.Debug().Str("kind", string(kind)).Err(err).Str("path", c.Path()).Msg("token rejected")
			case errors.Is(err, domain.ErrUnauthenticated):
				metrics.TokenRejectionsTotal.WithLabelValues("unknown_subject").Inc()
				log.Debug().Str("path", c.Path()).Msg("token subject no longer exists")
			default:
				return err
			}
			return next(c)
		}
	}
}

func credential(r *http.Request, cookieName string) string {
	if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Principal(c) == nil {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
