package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

const (
	userCachePrefix = "provider:user:"
	userCacheTTL    = time.Hour
	// opTimeout keeps cache operations from ever blocking a webhook
	// response on cache availability.
	opTimeout = 2 * time.Second
)

// UserCache is the best-effort, TTL-bound mirror of reconciled user
// projections, keyed by external id.
type UserCache struct {
	client *redis.Client
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

func (c *UserCache) Write(ctx context.Context, externalID string, p ports.UserProjection) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return c.client.Set(ctx, c.key(externalID), data, userCacheTTL).Err()
}

// Get returns (nil, nil) on a miss; callers fall back to the record store.
func (c *UserCache) Get(ctx context.Context, externalID string) (*ports.UserProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(externalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var p ports.UserProjection
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return &p, nil
}

func (c *UserCache) Invalidate(ctx context.Context, externalID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return c.client.Del(ctx, c.key(externalID)).Err()
}

func (c *UserCache) key(externalID string) string {
	return userCachePrefix + externalID
}
