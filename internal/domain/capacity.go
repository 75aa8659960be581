package domain

import "pickupcore/internal/domain/models"

// EffectiveCapacity applies an open override's custom capacity over the session base.
func EffectiveCapacity(s models.Session, ov *models.DayOverride) int {
	if ov != nil && !ov.IsClosed && ov.CustomCapacity != nil {
		return *ov.CustomCapacity
	}
	return s.BaseCapacity
}

// Remaining never goes below zero, even when a slot is oversold.
func Remaining(capacity, booked int) int {
	if booked >= capacity {
		return 0
	}
	return capacity - booked
}

// ComputeSessionStats derives availability for one (date, session) from the
// active pax sum and the optional override.
func ComputeSessionStats(s models.Session, booked int, ov *models.DayOverride, locked bool) models.SessionStats {
	capacity := EffectiveCapacity(s, ov)
	stats := models.SessionStats{
		Booked:    booked,
		Capacity:  capacity,
		Remaining: Remaining(capacity, booked),
		IsLocked:  locked,
		Override:  ov,
	}

	switch {
	case ov != nil && ov.IsClosed:
		stats.Status = models.StatusClosed
		stats.Remaining = 0
	case booked >= capacity:
		stats.Status = models.StatusFull
	default:
		stats.Status = models.StatusOpen
	}
	return stats
}
