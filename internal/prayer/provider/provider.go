package provider

import (
	"context"
	"errors"
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// ErrComputation covers invalid inputs and unusable provider results.
// Callers keep the last good daily set when they see it.
var ErrComputation = errors.New("unable to compute prayer times")

// Method selects the calculation convention for the daily times.
type Method string

const (
	MuslimWorldLeague Method = "MuslimWorldLeague"
	Egyptian          Method = "Egyptian"
	UmmAlQura         Method = "UmmAlQura"
	Dubai             Method = "Dubai"
	Kuwait            Method = "Kuwait"
	NorthAmerica      Method = "NorthAmerica" // default
)

// Madhab selects the Asr shadow convention.
type Madhab string

const (
	Shafi  Madhab = "Shafi"
	Hanafi Madhab = "Hanafi" // default
)

// ParseMethod maps a raw string to a Method, defaulting to NorthAmerica.
func ParseMethod(raw string) Method {
	switch Method(raw) {
	case MuslimWorldLeague, Egyptian, UmmAlQura, Dubai, Kuwait:
		return Method(raw)
	default:
		return NorthAmerica
	}
}

// ParseMadhab maps a raw string to a Madhab, defaulting to Hanafi.
func ParseMadhab(raw string) Madhab {
	if Madhab(raw) == Shafi {
		return Shafi
	}
	return Hanafi
}

// Provider computes the five ordered prayer instants for one calendar day.
// Implementations are treated as pure function boundaries.
type Provider interface {
	DailyTimes(ctx context.Context, coords model.Coordinates, date time.Time, method Method, madhab Madhab) (model.DailySet, error)
}

// validate checks the strictly-increasing invariant on a computed set.
func validate(set model.DailySet) error {
	for i := 1; i < len(set.Instants); i++ {
		if !set.Instants[i].Time.After(set.Instants[i-1].Time) {
			return ErrComputation
		}
	}
	return nil
}
