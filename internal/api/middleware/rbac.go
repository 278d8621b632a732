package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/service"
)

// RequireRole enforces role-based access control. Anonymous callers get 401,
// authenticated callers without the role get 403. ROLE_ADMIN passes every
// check.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	label := required.String()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return domain.ErrUnauthenticated
			}
			if !service.Authorize(p.Roles, required) {
				metrics.AuthorizationDeniedTotal.WithLabelValues(label).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
