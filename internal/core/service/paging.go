package service

import (
	"slices"
	"strings"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// normalizePage applies paging defaults and rejects sort fields outside the
// allowed set.
func normalizePage(q ports.PageQuery, allowed []string, defaultSort string) (ports.PageQuery, error) {
	if q.Number < 0 {
		return q, domain.NewAPIError("pageNumber must not be negative")
	}
	if q.Number > ports.MaxPageNumber {
		return q, domain.NewAPIError("pageNumber must not exceed %d", ports.MaxPageNumber)
	}
	switch {
	case q.Size <= 0:
		q.Size = ports.DefaultPageSize
	case q.Size > ports.MaxPageSize:
		q.Size = ports.MaxPageSize
	}

	if q.SortBy == "" {
		q.SortBy = defaultSort
	}
	if !slices.Contains(allowed, q.SortBy) {
		return q, domain.NewAPIError("Invalid sortBy %q, expected one of: %s", q.SortBy, strings.Join(allowed, ", "))
	}

	switch strings.ToLower(q.SortOrder) {
	case "", "asc":
		q.SortOrder = "asc"
	case "desc":
		q.SortOrder = "desc"
	default:
		return q, domain.NewAPIError("Invalid sortOrder %q, expected asc or desc", q.SortOrder)
	}
	return q, nil
}
