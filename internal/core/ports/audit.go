package ports

import (
	"context"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

// AuditSink accepts auth events without blocking the request path.
type AuditSink interface {
	Record(event domain.AuthEvent)
}

// AuditRepository persists auth events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event domain.AuthEvent) error
}
