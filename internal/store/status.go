package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// StatusStore persists the tri-state completion status per
// (day key, prayer) record. Records are created lazily on first write
// and never expire. Storage is treated as always available: read
// failures and corrupt values degrade silently to unset, write failures
// lose durability but never fail the operation.
type StatusStore struct {
	kv Cmdable
	ns string
}

// NewStatusStore scopes a store to one owner namespace (e.g. "user:42").
func NewStatusStore(kv Cmdable, ns string) *StatusStore {
	return &StatusStore{kv: kv, ns: ns}
}

// Get returns the stored status, defaulting to unset.
func (s *StatusStore) Get(ctx context.Context, day string, name model.PrayerName) model.PrayerStatus {
	raw, err := s.kv.Get(ctx, namespaced(s.ns, daykey.Status(day, name))).Result()
	if err != nil {
		return model.StatusUnset
	}
	return model.ParsePrayerStatus(raw)
}

// Cycle applies unset -> completed -> missed -> unset, persists the new
// value and returns it for immediate feedback.
func (s *StatusStore) Cycle(ctx context.Context, day string, name model.PrayerName) model.PrayerStatus {
	next := s.Get(ctx, day, name).Next()

	key := namespaced(s.ns, daykey.Status(day, name))
	if err := s.kv.Set(ctx, key, string(next), 0).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to persist prayer status")
	}
	return next
}

// BulkLoad fetches a whole day's statuses in one round trip.
func (s *StatusStore) BulkLoad(ctx context.Context, day string, names []model.PrayerName) map[model.PrayerName]model.PrayerStatus {
	out := make(map[model.PrayerName]model.PrayerStatus, len(names))
	if len(names) == 0 {
		return out
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = namespaced(s.ns, daykey.Status(day, n))
	}

	vals, err := s.kv.MGet(ctx, keys...).Result()
	if err != nil {
		log.Error().Err(err).Str("day", day).Msg("bulk status load failed, defaulting to unset")
		for _, n := range names {
			out[n] = model.StatusUnset
		}
		return out
	}

	for i, n := range names {
		raw, _ := vals[i].(string)
		out[n] = model.ParsePrayerStatus(raw)
	}
	return out
}
