package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateCache implements ports.RateCache using Redis. Market snapshots are
// stored as serialized JSON under a "rates:" prefix with a TTL; a manual
// refresh deletes the keys so the next read re-fetches.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed market-rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rates:",
	}
}

// Get retrieves a cached rate snapshot.
// Returns nil, nil if the key does not exist or has expired.
func (c *RateCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate cache get: %w", err)
	}
	return val, nil
}

// Set stores a rate snapshot with TTL.
func (c *RateCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis rate cache set: %w", err)
	}
	return nil
}

// Delete removes one or more cached snapshots.
func (c *RateCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis rate cache delete: %w", err)
	}
	return nil
}
