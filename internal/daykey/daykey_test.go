package daykey

import (
	"testing"
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

func TestFromTime_StableWithinDay(t *testing.T) {
	early := time.Date(2025, 1, 4, 0, 0, 1, 0, time.UTC)
	late := time.Date(2025, 1, 4, 23, 59, 59, 0, time.UTC)
	next := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	if FromTime(early) != FromTime(late) {
		t.Errorf("same-day keys differ: %q vs %q", FromTime(early), FromTime(late))
	}
	if FromTime(early) != "2025-01-04" {
		t.Errorf("key = %q, want 2025-01-04", FromTime(early))
	}
	if FromTime(late) == FromTime(next) {
		t.Errorf("midnight boundary not respected: both %q", FromTime(next))
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		key  string
		n    int
		want string
	}{
		{"2025-01-04", 1, "2025-01-05"},
		{"2025-01-31", 1, "2025-02-01"},
		{"2025-03-01", -1, "2025-02-28"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
	}
	for _, tt := range tests {
		got, err := AddDays(tt.key, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d): %v", tt.key, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.key, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-01-04", "2025-01-04", 0},
		{"2025-01-04", "2025-01-05", 1},
		{"2025-01-04", "2025-01-06", 2},
		{"2025-01-06", "2025-01-04", -2},
		{"2024-12-31", "2025-01-01", 1},
		{"bogus", "2025-01-01", 0},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRecordKeys(t *testing.T) {
	if got := Status("2025-01-04", model.Fajr); got != "2025-01-04-Fajr" {
		t.Errorf("Status key = %q", got)
	}
	if got := Notification("2025-01-04", model.Isha); got != "2025-01-04-Isha-notification" {
		t.Errorf("Notification key = %q", got)
	}
	if got := DefaultNotification(model.Maghrib); got != "default-Maghrib-notification" {
		t.Errorf("DefaultNotification key = %q", got)
	}
}
