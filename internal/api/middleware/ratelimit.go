package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// RateLimit throttles a route group per client IP. If the limiter itself
// fails the request is let through and the failure logged.
func RateLimit(limiter ports.RateLimiter, scope string, limit int, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := scope + ":" + c.RealIP()
			d, err := limiter.Allow(c.Request().Context(), key, limit, window)
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.ResetAt.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if !d.Allowed {
				retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				h.Set(echo.HeaderRetryAfter, strconv.Itoa(max(retry, 1)))
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
