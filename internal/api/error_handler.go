package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>", "status": false}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg, Status: false})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var notFound *domain.ResourceNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Error()
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr.Message
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized, "Bad Credentials"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, "Error: Username already exists"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "Error: Email is already taken!"
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Full authentication is required to access this resource"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access Denied"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, try again later"
	case errors.Is(err, domain.ErrResourceNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrRoleNotFound):
		// Reference data is seeded at startup; a miss here is a deployment defect.
		log.Error().Err(err).Str("path", c.Path()).Msg("role reference data missing")
		return http.StatusInternalServerError, "Error: Role is not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
