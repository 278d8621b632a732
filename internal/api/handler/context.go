package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/middleware"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// requirePrincipal returns the caller set by the Authenticate middleware.
// Routes behind RequireAuth never see nil here; the check keeps a handler
// safe when mounted without it.
func requirePrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

func clientMeta(c echo.Context) ports.ClientMeta {
	return ports.ClientMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// pageQuery reads pageNumber, pageSize, sortBy and sortOrder from the query
// string. Defaults and the sort whitelist are applied by the service.
func pageQuery(c echo.Context) (ports.PageQuery, error) {
	q := ports.PageQuery{
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	var err error
	if q.Number, err = intParam(c, "pageNumber"); err != nil {
		return q, err
	}
	if q.Size, err = intParam(c, "pageSize"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
