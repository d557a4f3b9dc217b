package ports

import (
	"context"
	"time"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

// Geocoder resolves a place reference chosen in an address widget into
// coordinates before anything is persisted.
type Geocoder interface {
	Resolve(ctx context.Context, placeID string) (domain.GeoPoint, error)
}

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	// Claim records key and reports false when it had already been claimed.
	Claim(ctx context.Context, scope, key string) (bool, error)
	// Release forgets a claimed key so a failed request can be retried.
	Release(ctx context.Context, scope, key string) error
}

// PushQueue accepts realtime deliveries produced by writes. Enqueue never
// blocks the caller on network I/O.
type PushQueue interface {
	Enqueue(job domain.PushJob)
}

// MetricsCache stores the last computed dashboard payload.
type MetricsCache interface {
	Get(ctx context.Context) (*domain.DashboardMetrics, bool, error)
	Set(ctx context.Context, m *domain.DashboardMetrics, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
