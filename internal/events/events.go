package events

import (
	"context"
	"time"
)

// Event types published on the dispatch feed.
const (
	TypeTransition = "transition"
	TypeArrived    = "arrived"
)

// Event describes one committed dispatch change. Consumers should treat it as
// a hint to refresh; the database stays authoritative.
type Event struct {
	Type      string    `json:"type"`
	Date      string    `json:"date"`
	Session   string    `json:"session"`
	BookingID int64     `json:"bookingId,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	DriverID  int64     `json:"driverId,omitempty"`
	Count     int64     `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber streams events for one (date, session) until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, date, session string) (<-chan Event, error)
}

// Channel is the pub/sub channel name for a session's dispatch feed.
func Channel(date, session string) string {
	return "dispatch:" + date + ":" + session
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
