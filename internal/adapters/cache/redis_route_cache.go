package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed cache for rendered route snapshots.
//
// Values are the serialized route detail responses; every mutating
// operation on a route must invalidate its key so readers never see stale
// point ordering. Entries expire on their own after the TTL as a backstop.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func routeKey(routeID int64) string {
	return fmt.Sprintf("route:%d:detail", routeID)
}

// Get returns the cached snapshot and whether one was present.
func (c *RedisRouteCache) Get(ctx context.Context, routeID int64) ([]byte, bool, error) {
	if c.Client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}

	payload, err := c.Client.Get(ctx, routeKey(routeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("route cache: get route_id=%d: %w", routeID, err)
	}

	return payload, true, nil
}

func (c *RedisRouteCache) Set(ctx context.Context, routeID int64, payload []byte) error {
	if c.Client == nil {
		return errors.New("route cache: client is nil")
	}

	if err := c.Client.Set(ctx, routeKey(routeID), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("route cache: set route_id=%d: %w", routeID, err)
	}
	return nil
}

func (c *RedisRouteCache) Invalidate(ctx context.Context, routeID int64) error {
	if c.Client == nil {
		return errors.New("route cache: client is nil")
	}

	if err := c.Client.Del(ctx, routeKey(routeID)).Err(); err != nil {
		return fmt.Errorf("route cache: invalidate route_id=%d: %w", routeID, err)
	}
	return nil
}
