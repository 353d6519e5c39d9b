package daykey

import (
	"fmt"
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// layout is the canonical day-key format. Two timestamps on the same
// calendar day always produce the same key regardless of time-of-day.
const layout = "2006-01-02"

// FromTime derives the day key for t in t's own location.
func FromTime(t time.Time) string {
	return t.Format(layout)
}

// Parse converts a day key back to midnight of that day in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// AddDays returns the day key n calendar days after key.
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key, time.UTC)
	if err != nil {
		return "", err
	}
	return FromTime(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the whole calendar days from a to b (negative when
// b precedes a). Malformed keys count as zero days apart.
func DaysBetween(a, b string) int {
	ta, err := Parse(a, time.UTC)
	if err != nil {
		return 0
	}
	tb, err := Parse(b, time.UTC)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// Status builds the persisted-record key for a prayer's completion status.
func Status(key string, name model.PrayerName) string {
	return fmt.Sprintf("%s-%s", key, name)
}

// Notification builds the persisted-record key for a prayer's alert mode.
func Notification(key string, name model.PrayerName) string {
	return fmt.Sprintf("%s-%s-notification", key, name)
}

// DefaultNotification builds the global per-prayer default alert-mode key,
// consulted by the next-day scheduler when no per-day override exists.
func DefaultNotification(name model.PrayerName) string {
	return fmt.Sprintf("default-%s-notification", name)
}
