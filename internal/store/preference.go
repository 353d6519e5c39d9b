package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
	"github.com/Liban-Ahmed/taqwa-server/internal/notify"
)

// PreferenceStore persists the per-(day key, prayer) notification mode
// and keeps the device alert for that record in sync: every change
// cancels the pending alert and re-arms it unless the mode is silent.
type PreferenceStore struct {
	kv     Cmdable
	ns     string
	device string
	sched  notify.Scheduler
}

// NewPreferenceStore scopes a store to one owner namespace and the
// device its alerts are published to.
func NewPreferenceStore(kv Cmdable, ns, device string, sched notify.Scheduler) *PreferenceStore {
	return &PreferenceStore{kv: kv, ns: ns, device: device, sched: sched}
}

// Get returns the stored mode for the day, defaulting to standard.
func (p *PreferenceStore) Get(ctx context.Context, day string, name model.PrayerName) model.NotificationMode {
	raw, err := p.kv.Get(ctx, namespaced(p.ns, daykey.Notification(day, name))).Result()
	if err != nil {
		return model.NotifyStandard
	}
	return model.ParseNotificationMode(raw)
}

// GetDefault returns the global per-prayer default mode, consulted by the
// next-day scheduler when no per-day override exists.
func (p *PreferenceStore) GetDefault(ctx context.Context, name model.PrayerName) model.NotificationMode {
	raw, err := p.kv.Get(ctx, namespaced(p.ns, daykey.DefaultNotification(name))).Result()
	if err != nil {
		return model.NotifyStandard
	}
	return model.ParseNotificationMode(raw)
}

// SetDefault persists the global per-prayer default mode.
func (p *PreferenceStore) SetDefault(ctx context.Context, name model.PrayerName, mode model.NotificationMode) {
	key := namespaced(p.ns, daykey.DefaultNotification(name))
	if err := p.kv.Set(ctx, key, string(mode), 0).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to persist default notification mode")
	}
}

// Set persists the mode and re-arms the device alert for that prayer/day:
// cancel plus recreate, except silent which cancels only. fireAt is the
// prayer's instant, used when recreating the alert.
func (p *PreferenceStore) Set(ctx context.Context, day string, name model.PrayerName, mode model.NotificationMode, fireAt time.Time) {
	key := namespaced(p.ns, daykey.Notification(day, name))
	if err := p.kv.Set(ctx, key, string(mode), 0).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to persist notification mode")
	}

	id := notify.AlertID(name, day)
	if err := p.sched.CancelAlert(ctx, p.device, id); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("alert cancel failed")
	}
	if mode == model.NotifySilent {
		return
	}
	err := p.sched.ScheduleAlert(ctx, p.device, notify.Alert{
		ID:     id,
		Title:  string(name),
		Body:   "It's time for " + string(name),
		FireAt: fireAt,
		Sound:  mode,
	})
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("alert re-arm failed")
	}
}

// ArmDay pre-arms alerts for every prayer in set, typically tomorrow's,
// using the per-day override when present and the global default
// otherwise. Silent prayers are skipped.
func (p *PreferenceStore) ArmDay(ctx context.Context, set model.DailySet) {
	for _, in := range set.Instants {
		mode := p.GetDefault(ctx, in.Name)
		if raw, err := p.kv.Get(ctx, namespaced(p.ns, daykey.Notification(set.Day, in.Name))).Result(); err == nil {
			mode = model.ParseNotificationMode(raw)
		}
		if mode == model.NotifySilent {
			continue
		}

		id := notify.AlertID(in.Name, set.Day)
		err := p.sched.ScheduleAlert(ctx, p.device, notify.Alert{
			ID:     id,
			Title:  string(in.Name),
			Body:   "It's time for " + string(in.Name),
			FireAt: in.Time,
			Sound:  mode,
		})
		if err != nil {
			log.Warn().Err(err).Str("id", id).Msg("next-day alert arm failed")
		}
	}
}
