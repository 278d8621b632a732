package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/middleware"
	"github.com/ecomhub/storefront-api/internal/core/domain"
)

var (
	alice = &domain.Principal{UserID: 1, Username: "alice", Roles: []domain.Role{domain.RoleUser}}
	admin = &domain.Principal{UserID: 9, Username: "root", Roles: []domain.Role{domain.RoleAdmin}}
)

// newContext builds an echo context for a JSON request with the given path
// params and caller. A nil principal is an anonymous request.
func newContext(method, target, body string, p *domain.Principal, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if p != nil {
		middleware.SetPrincipal(c, p)
	}
	return c, rec
}

// httpStatus returns the status an *echo.HTTPError carries, or 0.
func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
