package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cmdable is the slice of the Redis API the per-day stores use.
// *redis.Client satisfies it; tests substitute a map-backed fake.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// namespaced prefixes a record key with the owner's namespace, so the
// flat per-day key layout maps onto a shared Redis instance. An empty
// namespace keeps the flat layout.
func namespaced(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}
