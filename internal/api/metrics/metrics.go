// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "success", "duplicate_username", "duplicate_email", "role_not_found", "invalid" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// SigninsTotal counts signin attempts.
// Label:
//   - result: "success", "bad_credentials", "invalid" or "error"
var SigninsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_signins_total",
		Help:      "Total number of signin attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts presented tokens that failed verification.
// Label:
//   - kind: "malformed", "expired", "unsupported_algorithm", "invalid_signature" or "unknown_subject"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"kind"},
)

// AuthorizationDeniedTotal counts requests refused by the role gate.
// Label:
//   - required_role: the role the route asked for
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_authorization_denied_total",
		Help:      "Total number of requests denied by role checks.",
	},
	[]string{"required_role"},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - scope: the limited route group (e.g. "signin")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by rate limiting, by scope.",
	},
	[]string{"scope"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Labels:
//   - type: the auth event type (e.g. "signin_failure")
//   - result: "written", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events, by type and outcome.",
	},
	[]string{"type", "result"},
)

// AuditQueueDepth tracks the events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long a single audit write takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Shop metrics ──────────────────────────────────────────────────────────────

// CatalogMutationsTotal counts successful catalog writes.
// Labels:
//   - entity: "category" or "product"
//   - action: "create", "update", "delete" or "image"
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_mutations_total",
		Help:      "Total number of catalog writes, by entity and action.",
	},
	[]string{"entity", "action"},
)

// CartOperationsTotal counts successful cart changes.
// Label:
//   - operation: "add_product", "increment", "decrement" or "remove_product"
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart changes, by operation.",
	},
	[]string{"operation"},
)
