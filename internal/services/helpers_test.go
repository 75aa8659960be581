package services

import (
	"context"
	"sync"
	"time"

	"pickupcore/internal/events"

	"github.com/DATA-DOG/go-sqlmock"
)

func fixedClock(y int, m time.Month, d, hour, min int) Clock {
	now := time.Date(y, m, d, hour, min, 0, 0, time.UTC)
	return Clock{Loc: time.UTC, NowFunc: func() time.Time { return now }}
}

var sessionCols = []string{"id", "name", "base_capacity", "cutoff_hour", "sort_order"}

func defaultSessions() *sqlmock.Rows {
	return sqlmock.NewRows(sessionCols).
		AddRow("morning", "Morning class", 12, 10, 1).
		AddRow("evening", "Evening class", 12, 17, 2)
}

func morningSession() *sqlmock.Rows {
	return sqlmock.NewRows(sessionCols).AddRow("morning", "Morning class", 12, 10, 1)
}

var stopCols = []string{
	"id", "trip_date", "session_id", "pax", "status", "guest_name", "guest_phone",
	"zone_id", "hotel_name", "lat", "lng", "pickup_time", "route_order",
	"assigned_driver_id", "transport_status", "actual_pickup_time", "actual_dropoff_time", "created_at",
}

type stop struct {
	id         int64
	routeOrder int
	driver     any
	status     string
	booking    string
}

// stopCreatedAt is the created_at stopRows gives stop id.
func stopCreatedAt(id int64) time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute)
}

func stopRows(stops ...stop) *sqlmock.Rows {
	rows := sqlmock.NewRows(stopCols)
	for _, s := range stops {
		st := s.booking
		if st == "" {
			st = "active"
		}
		rows.AddRow(s.id, "2025-03-10", "morning", 2, st, "Guest", "0800",
			nil, "Hotel", nil, nil, "08:30", s.routeOrder,
			s.driver, s.status, nil, nil, stopCreatedAt(s.id))
	}
	return rows
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
