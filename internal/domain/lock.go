package domain

import "time"

const dateLayout = "2006-01-02"

// IsLocked reports whether a session on date no longer accepts bookings,
// cancellations or capacity edits at now. date is YYYY-MM-DD and now must
// already be in the operator's time zone.
func IsLocked(date string, cutoffHour int, now time.Time) bool {
	today := now.Format(dateLayout)
	switch {
	case date < today:
		return true
	case date > today:
		return false
	default:
		return now.Hour() >= cutoffHour
	}
}
