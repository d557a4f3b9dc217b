package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: dedup:<scope>:<key>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// Claim atomically records the key and reports whether this call was the
// first to do so within the TTL.
func (d *DedupChecker) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(scope, key), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release deletes the key. Releasing an unknown key is not an error.
func (d *DedupChecker) Release(ctx context.Context, scope, key string) error {
	if err := d.client.Del(ctx, dedupKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func dedupKey(scope, key string) string {
	return fmt.Sprintf("dedup:%s:%s", scope, key)
}
