package prayer

import (
	"fmt"
	"strings"
	"time"
)

// FormatRemaining renders a countdown as the largest two non-zero units
// among hours, minutes and seconds, pluralized: "1 hr 45 mins",
// "5 hrs 5 mins", "2 mins 30 secs". Zero or negative durations render
// as "0 secs".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0 secs"
	}

	total := int(d.Seconds())
	units := []struct {
		value    int
		singular string
	}{
		{total / 3600, "hr"},
		{(total / 60) % 60, "min"},
		{total % 60, "sec"},
	}

	var parts []string
	for _, u := range units {
		if u.value == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", u.value, pluralize(u.value, u.singular)))
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return "0 secs"
	}
	return strings.Join(parts, " ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
