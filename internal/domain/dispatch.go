package domain

import (
	"fmt"
	"time"

	"pickupcore/internal/domain/models"
)

var transportSequence = []models.TransportStatus{
	models.TransportWaiting,
	models.TransportDriverEnRoute,
	models.TransportDriverArrived,
	models.TransportOnBoard,
	models.TransportDroppedOff,
}

// TransportRank is the position of s in the pickup flow, or -1 when unknown.
func TransportRank(s models.TransportStatus) int {
	for i, v := range transportSequence {
		if v == s {
			return i
		}
	}
	return -1
}

// NextTransportStatus returns the state that follows s. dropped_off is terminal.
func NextTransportStatus(s models.TransportStatus) (models.TransportStatus, bool) {
	r := TransportRank(s)
	if r < 0 || r == len(transportSequence)-1 {
		return "", false
	}
	return transportSequence[r+1], true
}

// ParseTransportStatus validates a state name coming from a client.
func ParseTransportStatus(raw string) (models.TransportStatus, error) {
	s := models.TransportStatus(raw)
	if TransportRank(s) < 0 {
		return "", ValidationError{Field: "expected_from", Msg: fmt.Sprintf("unknown transport status %q", raw)}
	}
	return s, nil
}

// Transition is the planned effect of one advance call.
type Transition struct {
	From           models.TransportStatus
	To             models.TransportStatus
	ClaimDriver    bool
	SetPickupTime  bool
	SetDropoffTime bool
	// Chain dispatches the next waiting stop of the same session to this driver.
	Chain bool
	// NoOp is set when the booking is already at or past To.
	NoOp bool
}

// PlanAdvance decides what advancing b from expected does for driverID.
// It enforces ownership, the expected-state guard and idempotence; it does
// not touch the store.
func PlanAdvance(b models.Booking, driverID int64, expected models.TransportStatus) (Transition, error) {
	if driverID <= 0 {
		return Transition{}, ValidationError{Field: "driver_id", Msg: "required"}
	}
	target, ok := NextTransportStatus(expected)
	if !ok {
		return Transition{}, ValidationError{Field: "expected_from", Msg: fmt.Sprintf("no transition from %q", expected)}
	}
	if !b.IsActive() {
		return Transition{}, ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}
	if b.DriverID != nil && *b.DriverID != driverID {
		return Transition{}, ConflictError{Resource: "booking", Msg: "stop is claimed by another driver"}
	}

	tr := Transition{From: expected, To: target}
	if TransportRank(b.TransportStatus) >= TransportRank(target) {
		tr.NoOp = true
		return tr, nil
	}
	if b.TransportStatus != expected {
		return Transition{}, ConflictError{
			Resource: "booking",
			Msg:      fmt.Sprintf("expected %s, found %s", expected, b.TransportStatus),
		}
	}

	tr.ClaimDriver = b.DriverID == nil
	tr.SetPickupTime = target == models.TransportOnBoard
	tr.SetDropoffTime = target == models.TransportDroppedOff
	tr.Chain = target == models.TransportOnBoard
	return tr, nil
}

// ApplyTransition returns b as it reads after tr was persisted at now.
func ApplyTransition(b models.Booking, tr Transition, driverID int64, now time.Time) models.Booking {
	if tr.NoOp {
		return b
	}
	out := b
	out.TransportStatus = tr.To
	if tr.ClaimDriver {
		id := driverID
		out.DriverID = &id
	}
	if tr.SetPickupTime {
		t := now
		out.ActualPickupTime = &t
	}
	if tr.SetDropoffTime {
		t := now
		out.ActualDropoffTime = &t
	}
	return out
}
