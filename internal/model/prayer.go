package model

import "time"

// PrayerName identifies one of the five daily prayers.
type PrayerName string

const (
	Fajr    PrayerName = "Fajr"
	Dhuhr   PrayerName = "Dhuhr"
	Asr     PrayerName = "Asr"
	Maghrib PrayerName = "Maghrib"
	Isha    PrayerName = "Isha"
)

// PrayerNames lists the five prayers in chronological order.
var PrayerNames = []PrayerName{Fajr, Dhuhr, Asr, Maghrib, Isha}

// ParsePrayerName validates a raw string against the five prayer names.
func ParsePrayerName(raw string) (PrayerName, bool) {
	for _, n := range PrayerNames {
		if string(n) == raw {
			return n, true
		}
	}
	return "", false
}

// PrayerStatus is the tri-state completion marker for one prayer on one day.
type PrayerStatus string

const (
	StatusUnset     PrayerStatus = "none"
	StatusCompleted PrayerStatus = "prayed"
	StatusMissed    PrayerStatus = "missed"
)

// Next applies the cyclic transition unset -> completed -> missed -> unset.
func (s PrayerStatus) Next() PrayerStatus {
	switch s {
	case StatusUnset:
		return StatusCompleted
	case StatusCompleted:
		return StatusMissed
	default:
		return StatusUnset
	}
}

// ParsePrayerStatus maps a stored string back to a status.
// Unknown or corrupt values degrade to StatusUnset.
func ParsePrayerStatus(raw string) PrayerStatus {
	switch PrayerStatus(raw) {
	case StatusCompleted, StatusMissed:
		return PrayerStatus(raw)
	default:
		return StatusUnset
	}
}

// NotificationMode selects how a prayer alert sounds.
type NotificationMode string

const (
	NotifySilent   NotificationMode = "Silent"
	NotifyStandard NotificationMode = "Standard"
	NotifyAdhan    NotificationMode = "Adhan"
)

// NotificationModes lists the selectable alert modes.
var NotificationModes = []NotificationMode{NotifySilent, NotifyStandard, NotifyAdhan}

// LookupNotificationMode validates a raw string against the selectable
// modes. Used for client input, which should fail loudly; values read
// back from storage go through the lenient ParseNotificationMode.
func LookupNotificationMode(raw string) (NotificationMode, bool) {
	for _, m := range NotificationModes {
		if string(m) == raw {
			return m, true
		}
	}
	return "", false
}

// ParseNotificationMode maps a stored string back to a mode.
// Unknown or corrupt values degrade to NotifyStandard.
func ParseNotificationMode(raw string) NotificationMode {
	switch NotificationMode(raw) {
	case NotifySilent, NotifyAdhan:
		return NotificationMode(raw)
	default:
		return NotifyStandard
	}
}

// Instant is a single named prayer timestamp on one calendar day.
type Instant struct {
	Name PrayerName `json:"name"`
	Time time.Time  `json:"time"`
}

// DailySet holds the five prayer instants computed for one calendar day.
// Invariant: instants are strictly increasing in the fixed Fajr..Isha order.
type DailySet struct {
	Day      string     `json:"day"` // day key, YYYY-MM-DD
	Instants [5]Instant `json:"instants"`
}

// Coordinates is a latitude/longitude pair from a device location fix.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
