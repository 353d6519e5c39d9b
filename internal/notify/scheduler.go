package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// Alert is one device notification to arm for a specific prayer instant.
type Alert struct {
	ID     string                 `json:"id"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	FireAt time.Time              `json:"fire_at"`
	Sound  model.NotificationMode `json:"sound"`
}

// Scheduler is the device alert boundary. Delivery mechanics past the
// broker are out of scope; failures are logged and never retried, the
// next natural recompute re-arms the alert.
type Scheduler interface {
	ScheduleAlert(ctx context.Context, device string, alert Alert) error
	CancelAlert(ctx context.Context, device, id string) error
}

// AlertID is the one-shot identifier convention for a prayer on one day.
func AlertID(name model.PrayerName, dayKey string) string {
	return fmt.Sprintf("%s-%s", name, dayKey)
}

// RecurringAlertID is the identifier convention for the recurring daily
// alert variant, keyed on the start-of-day timestamp.
func RecurringAlertID(name model.PrayerName, startOfDay time.Time) string {
	return fmt.Sprintf("%s-%d", name, startOfDay.Unix())
}

// Nop discards every alert. Used in tests and when no broker is configured.
type Nop struct{}

func (Nop) ScheduleAlert(context.Context, string, Alert) error { return nil }
func (Nop) CancelAlert(context.Context, string, string) error  { return nil }
