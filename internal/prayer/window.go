package prayer

import (
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// Window is one evaluation of the live countdown: which prayer window we
// are inside, how long until the next one, and how far through we are.
type Window struct {
	CurrentPrayer model.PrayerName `json:"current_prayer"`
	NextPrayer    model.PrayerName `json:"next_prayer"`
	Remaining     string           `json:"remaining"`
	Progress      float64          `json:"progress"` // position in [0,1] between current and next
	GeneratedAt   time.Time        `json:"generated_at"`
}

// Evaluate derives the window for now from a day's five instants.
//
// The window before today's Fajr belongs to yesterday's Isha, synthesized
// as today's Isha minus 24h. Past today's Isha the target is tomorrow's
// Fajr, extrapolated as today's Fajr plus 24h rather than re-querying the
// provider; the drift versus true solar recomputation is accepted.
func Evaluate(set model.DailySet, now time.Time) Window {
	instants := set.Instants

	var current, next model.Instant
	found := false
	for i := range instants {
		if instants[i].Time.After(now) {
			next = instants[i]
			if i == 0 {
				current = model.Instant{Name: model.Isha, Time: instants[4].Time.Add(-24 * time.Hour)}
			} else {
				current = instants[i-1]
			}
			found = true
			break
		}
	}
	if !found {
		current = instants[4]
		next = model.Instant{Name: model.Fajr, Time: instants[0].Time.Add(24 * time.Hour)}
	}

	span := next.Time.Sub(current.Time)
	progress := 1.0
	if span > 0 {
		progress = float64(now.Sub(current.Time)) / float64(span)
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
	}

	return Window{
		CurrentPrayer: current.Name,
		NextPrayer:    next.Name,
		Remaining:     FormatRemaining(next.Time.Sub(now)) + " until " + string(next.Name),
		Progress:      progress,
		GeneratedAt:   now,
	}
}
