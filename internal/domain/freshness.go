package domain

import (
	"fmt"
	"time"
)

// AgeInDays returns the number of whole days elapsed between then and now.
// Timestamps in the future count as today.
func AgeInDays(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// UpdatedLabel turns an age in days into the label shown next to a
// document. ok is false past two weeks, when no label is shown.
func UpdatedLabel(days int) (label string, ok bool) {
	switch {
	case days <= 0:
		return "Today", true
	case days == 1:
		return "1 day ago", true
	case days <= 7:
		return fmt.Sprintf("%d days ago", days), true
	case days <= 14:
		return "1 week ago", true
	default:
		return "", false
	}
}

// IsRecent reports whether an age falls within the recent threshold
func IsRecent(days, thresholdDays int) bool {
	return days <= thresholdDays
}
