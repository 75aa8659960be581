package repositories

import (
	"context"
	"testing"
	"time"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingCols = []string{
	"id", "trip_date", "session_id", "pax", "status", "guest_name", "guest_phone",
	"zone_id", "hotel_name", "lat", "lng", "pickup_time", "route_order",
	"assigned_driver_id", "transport_status", "actual_pickup_time", "actual_dropoff_time", "created_at",
}

func bookingRow(rows *sqlmock.Rows, id int64, routeOrder int, driver any, status string) *sqlmock.Rows {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "2025-03-10", "morning", 2, "active", "Guest", "0800",
		"old-town", "Hotel A", -8.65, 115.21, "08:30", routeOrder,
		driver, status, nil, nil, created)
}

func TestSumActivePax_GroupsByDateAndSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings").
		WithArgs("2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"d", "session_id", "pax"}).
			AddRow("2025-03-10", "morning", 7).
			AddRow("2025-03-10", "evening", 3).
			AddRow("2025-03-11", "morning", 12))

	repo := BookingRepository{DB: db}
	got, err := repo.SumActivePax(context.Background(), "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("SumActivePax error: %v", err)
	}
	if got["2025-03-10"]["morning"] != 7 || got["2025-03-10"]["evening"] != 3 || got["2025-03-11"]["morning"] != 12 {
		t.Fatalf("unexpected sums: %#v", got)
	}
	if _, ok := got["2025-03-12"]; ok {
		t.Fatalf("days without bookings should be absent")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNextWaiting_SkipsOtherDriversAndEarlierStops(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`assigned_driver_id IS NULL OR assigned_driver_id = \?\)\s+AND \(route_order, created_at, id\) > \(\?, \?, \?\)\s+ORDER BY route_order ASC, created_at ASC, id ASC LIMIT 1 FOR UPDATE`).
		WithArgs("2025-03-10", "morning", int64(7), 3, created, int64(40)).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 42, 4, nil, "waiting"))

	after := StopCursor{RouteOrder: 3, CreatedAt: created, ID: 40}
	b, found, err := BookingRepository{DB: db}.NextWaiting(context.Background(), "2025-03-10", "morning", 7, &after)
	if err != nil {
		t.Fatalf("NextWaiting error: %v", err)
	}
	if !found || b.ID != 42 || b.RouteOrder != 4 {
		t.Fatalf("unexpected stop: found=%v %+v", found, b)
	}
	if b.DriverID != nil || b.TransportStatus != models.TransportWaiting {
		t.Fatalf("unexpected claim state: %+v", b)
	}
	if b.ZoneID == nil || *b.ZoneID != "old-town" || b.Lat == nil || *b.Lat != -8.65 {
		t.Fatalf("nullable columns not mapped: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNextWaiting_TiedRouteOrderUsesCreationOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	boarded := models.Booking{ID: 5, RouteOrder: models.UnassignedRouteOrder, CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	mock.ExpectQuery(`\(route_order, created_at, id\) > \(\?, \?, \?\)`).
		WithArgs("2025-03-10", "morning", int64(7), models.UnassignedRouteOrder, boarded.CreatedAt, int64(5)).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 6, models.UnassignedRouteOrder, nil, "waiting"))

	after := CursorOf(boarded)
	b, found, err := BookingRepository{DB: db}.NextWaiting(context.Background(), "2025-03-10", "morning", 7, &after)
	if err != nil {
		t.Fatalf("NextWaiting error: %v", err)
	}
	if !found || b.ID != 6 || b.RouteOrder != models.UnassignedRouteOrder {
		t.Fatalf("expected stop 6 at the same route order, got found=%v %+v", found, b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNextWaiting_NoneLeft(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("transport_status = 'waiting'").
		WithArgs("2025-03-10", "evening", int64(7)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, found, err := BookingRepository{DB: db}.NextWaiting(context.Background(), "2025-03-10", "evening", 7, nil)
	if err != nil {
		t.Fatalf("NextWaiting error: %v", err)
	}
	if found {
		t.Fatalf("expected no waiting stop")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id = \\? LIMIT 1 FOR UPDATE").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err = BookingRepository{DB: db}.GetByID(context.Background(), 99, true)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyTransition_StaleStateReportsFalse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 10, 8, 40, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE bookings SET transport_status = \?, assigned_driver_id = COALESCE\(assigned_driver_id, \?\), actual_pickup_time = \?`).
		WithArgs("on_board", int64(7), at, int64(5), "driver_arrived").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := BookingRepository{DB: db}.ApplyTransition(context.Background(), TransitionUpdate{
		ID:       5,
		From:     models.TransportDriverArrived,
		To:       models.TransportOnBoard,
		DriverID: 7,
		PickupAt: &at,
	})
	if err != nil {
		t.Fatalf("ApplyTransition error: %v", err)
	}
	if ok {
		t.Fatalf("expected stale write to report false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDropOffAll_ScopedToDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(`transport_status = 'on_board'\s+AND assigned_driver_id = \?`).
		WithArgs(at, "2025-03-10", "morning", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	driver := int64(7)
	n, err := BookingRepository{DB: db}.DropOffAll(context.Background(), "2025-03-10", "morning", &driver, at)
	if err != nil {
		t.Fatalf("DropOffAll error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 stops dropped off, got %d", n)
	}
}

func TestUpdatePickup_DriverChangeOnlyWhileWaiting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE bookings SET route_order = \?, assigned_driver_id = \? WHERE id = \? AND status <> 'cancelled' AND transport_status = 'waiting'`).
		WithArgs(2, int64(9), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order := 2
	driver := int64(9)
	ok, err := BookingRepository{DB: db}.UpdatePickup(context.Background(), 11, PickupPatch{RouteOrder: &order, DriverID: &driver})
	if err != nil {
		t.Fatalf("UpdatePickup error: %v", err)
	}
	if !ok {
		t.Fatalf("expected update to apply")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePickup_EmptyPatchSkipsWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	ok, err := BookingRepository{DB: db}.UpdatePickup(context.Background(), 11, PickupPatch{})
	if err != nil || !ok {
		t.Fatalf("expected no-op success, got ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}
