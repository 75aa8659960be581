package models

// Session is a recurring class slot. Reference data.
type Session struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BaseCapacity int    `json:"baseCapacity"`
	CutoffHour   int    `json:"cutoffHour"`
	SortOrder    int    `json:"sortOrder"`
}

// DayOverride is a per-date-per-session exception to base capacity, or a closure.
type DayOverride struct {
	Date           string  `json:"date"`
	SessionID      string  `json:"session"`
	IsClosed       bool    `json:"isClosed"`
	CustomCapacity *int    `json:"customCapacity"`
	ClosureReason  *string `json:"closureReason"`
}

// OverrideInput is the staff-editable part of a DayOverride.
type OverrideInput struct {
	IsClosed       bool    `json:"isClosed"`
	CustomCapacity *int    `json:"customCapacity" validate:"omitempty,gte=0"`
	ClosureReason  *string `json:"closureReason" validate:"omitempty,max=255"`
}

type SessionStatus string

const (
	StatusOpen   SessionStatus = "OPEN"
	StatusFull   SessionStatus = "FULL"
	StatusClosed SessionStatus = "CLOSED"
)

// SessionStats is the availability of one session on one date.
type SessionStats struct {
	Booked    int           `json:"booked"`
	Capacity  int           `json:"capacity"`
	Remaining int           `json:"remaining"`
	Status    SessionStatus `json:"status"`
	IsLocked  bool          `json:"isLocked"`
	Override  *DayOverride  `json:"override,omitempty"`
}

// DayAvailability maps session id to stats for a single date.
type DayAvailability map[string]SessionStats
