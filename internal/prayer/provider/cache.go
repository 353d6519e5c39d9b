package provider

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

const cacheTTL = 24 * time.Hour

// Cache is the slice of the Redis API the daily-set cache uses.
// *redis.Client satisfies it; tests substitute a map-backed fake.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached wraps a Provider with a Redis day-set cache so repeated requests
// for the same (day, coords, method, madhab) skip the upstream API.
// Cache failures degrade to a direct provider call.
type Cached struct {
	next  Provider
	cache Cache
}

// NewCached decorates next with the given cache client.
func NewCached(next Provider, cache Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// cacheKey hashes every parameter that affects the computed times, so
// different locations or conventions never share an entry.
func cacheKey(day string, coords model.Coordinates, method Method, madhab Madhab) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s", day, coords.Latitude, coords.Longitude, method, madhab)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("times:%s:%x", day, sum[:8])
}

func (c *Cached) DailyTimes(ctx context.Context, coords model.Coordinates, date time.Time, method Method, madhab Madhab) (model.DailySet, error) {
	key := cacheKey(daykey.FromTime(date), coords, method, madhab)

	if data, err := c.cache.Get(ctx, key).Bytes(); err == nil {
		var set model.DailySet
		if jsonErr := json.Unmarshal(data, &set); jsonErr == nil && validate(set) == nil {
			return set, nil
		}
		// Corrupt entry: treat as absent.
		log.Warn().Str("key", key).Msg("dropping corrupt daily-set cache entry")
	}

	set, err := c.next.DailyTimes(ctx, coords, date, method, madhab)
	if err != nil {
		return model.DailySet{}, err
	}

	if data, err := json.Marshal(set); err == nil {
		if err := c.cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to cache daily set")
		}
	}
	return set, nil
}
