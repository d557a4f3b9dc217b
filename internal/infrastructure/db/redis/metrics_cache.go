package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

const metricsKey = "metrics:dashboard"

// MetricsCache keeps the last computed dashboard as a JSON blob.
type MetricsCache struct {
	client *redis.Client
}

func NewMetricsCache(client *redis.Client) *MetricsCache {
	return &MetricsCache{client: client}
}

func (c *MetricsCache) Get(ctx context.Context) (*domain.DashboardMetrics, bool, error) {
	raw, err := c.client.Get(ctx, metricsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("metrics cache get: %w", err)
	}

	var m domain.DashboardMetrics
	if err := json.Unmarshal(raw, &m); err != nil {
		// A blob from an older layout is treated as a miss.
		return nil, false, nil
	}
	return &m, true, nil
}

func (c *MetricsCache) Set(ctx context.Context, m *domain.DashboardMetrics, ttl time.Duration) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("metrics cache encode: %w", err)
	}
	return c.client.Set(ctx, metricsKey, raw, ttl).Err()
}

func (c *MetricsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, metricsKey).Err()
}
