package services

import (
	"context"
	"testing"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/events"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAdvance_BoardingDispatchesNextStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? LIMIT 1 FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(stopRows(stop{id: 1, routeOrder: 1, driver: int64(7), status: "driver_arrived"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("on_board", int64(7), sqlmock.AnyArg(), int64(1), "driver_arrived").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`\(route_order, created_at, id\) > \(\?, \?, \?\)`).
		WithArgs("2025-03-10", "morning", int64(7), 1, stopCreatedAt(1), int64(1)).
		WillReturnRows(stopRows(stop{id: 2, routeOrder: 2, status: "waiting"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("driver_en_route", int64(7), int64(2), "waiting").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	pub := &recordingPublisher{}
	svc := DispatchService{DB: db, Publisher: pub, Clock: fixedClock(2025, 3, 10, 8, 40)}
	res, err := svc.Advance(context.Background(), 1, 7, models.TransportDriverArrived)
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if res.Booking.TransportStatus != models.TransportOnBoard || res.Booking.ActualPickupTime == nil {
		t.Fatalf("unexpected boarded stop %+v", res.Booking)
	}
	if res.Chained == nil || res.Chained.ID != 2 || res.Chained.TransportStatus != models.TransportDriverEnRoute {
		t.Fatalf("expected stop 2 dispatched, got %+v", res.Chained)
	}
	if !res.Chained.ClaimedBy(7) {
		t.Fatalf("chained stop must be claimed by the same driver")
	}
	if len(pub.events) != 2 || pub.events[1].BookingID != 2 || pub.events[1].Type != events.TypeTransition {
		t.Fatalf("unexpected events %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdvance_ChainsStopWithSameRouteOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	unordered := models.UnassignedRouteOrder
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(stopRows(stop{id: 1, routeOrder: unordered, driver: int64(7), status: "driver_arrived"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("on_board", int64(7), sqlmock.AnyArg(), int64(1), "driver_arrived").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`\(route_order, created_at, id\) > \(\?, \?, \?\)`).
		WithArgs("2025-03-10", "morning", int64(7), unordered, stopCreatedAt(1), int64(1)).
		WillReturnRows(stopRows(stop{id: 2, routeOrder: unordered, status: "waiting"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("driver_en_route", int64(7), int64(2), "waiting").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 40)}
	res, err := svc.Advance(context.Background(), 1, 7, models.TransportDriverArrived)
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if res.Chained == nil || res.Chained.ID != 2 || res.Chained.TransportStatus != models.TransportDriverEnRoute {
		t.Fatalf("expected stop 2 dispatched despite equal route order, got %+v", res.Chained)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdvance_LastStopBoardsWithoutChain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(3)).
		WillReturnRows(stopRows(stop{id: 3, routeOrder: 3, driver: int64(7), status: "driver_arrived"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`\(route_order, created_at, id\) > \(\?, \?, \?\)`).
		WithArgs("2025-03-10", "morning", int64(7), 3, stopCreatedAt(3), int64(3)).
		WillReturnRows(sqlmock.NewRows(stopCols))
	mock.ExpectCommit()

	svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 40)}
	res, err := svc.Advance(context.Background(), 3, 7, models.TransportDriverArrived)
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if res.Chained != nil {
		t.Fatalf("expected no chained stop, got %+v", res.Chained)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdvance_RepeatIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(stopRows(stop{id: 1, routeOrder: 1, driver: int64(7), status: "on_board"}))
	mock.ExpectCommit()

	pub := &recordingPublisher{}
	svc := DispatchService{DB: db, Publisher: pub, Clock: fixedClock(2025, 3, 10, 8, 45)}
	res, err := svc.Advance(context.Background(), 1, 7, models.TransportDriverArrived)
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if !res.NoOp || res.Chained != nil || res.Booking.TransportStatus != models.TransportOnBoard {
		t.Fatalf("expected no-op, got %+v", res)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no-op must not publish, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdvance_Conflicts(t *testing.T) {
	cases := []struct {
		name     string
		row      stop
		expected models.TransportStatus
	}{
		{"other driver", stop{id: 1, routeOrder: 1, driver: int64(8), status: "driver_en_route"}, models.TransportDriverEnRoute},
		{"stale expected", stop{id: 1, routeOrder: 1, driver: int64(7), status: "waiting"}, models.TransportDriverEnRoute},
		{"cancelled", stop{id: 1, routeOrder: 1, status: "waiting", booking: "cancelled"}, models.TransportWaiting},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock init error: %v", err)
			}
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(stopRows(tc.row))
			mock.ExpectRollback()

			svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 0)}
			if _, err := svc.Advance(context.Background(), 1, 7, tc.expected); !domain.IsConflict(err) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestAdvance_LostRaceIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(stopRows(stop{id: 1, routeOrder: 1, status: "waiting"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("driver_en_route", int64(7), int64(1), "waiting").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 0)}
	if _, err := svc.Advance(context.Background(), 1, 7, models.TransportWaiting); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStartRoute_NoWaitingStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM class_sessions").WithArgs("morning").WillReturnRows(morningSession())
	mock.ExpectBegin()
	mock.ExpectQuery("transport_status IN \\('driver_en_route', 'driver_arrived'\\)").WithArgs("2025-03-10", "morning", int64(7)).
		WillReturnRows(sqlmock.NewRows(stopCols))
	mock.ExpectQuery("transport_status = 'waiting'").WithArgs("2025-03-10", "morning", int64(7)).
		WillReturnRows(sqlmock.NewRows(stopCols))
	mock.ExpectRollback()

	svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 0)}
	if _, err := svc.StartRoute(context.Background(), "2025-03-10", "morning", 7); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStartRoute_ClaimsFirstStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM class_sessions").WithArgs("morning").WillReturnRows(morningSession())
	mock.ExpectBegin()
	mock.ExpectQuery("transport_status IN \\('driver_en_route', 'driver_arrived'\\)").WithArgs("2025-03-10", "morning", int64(7)).
		WillReturnRows(sqlmock.NewRows(stopCols))
	mock.ExpectQuery("transport_status = 'waiting'").WithArgs("2025-03-10", "morning", int64(7)).
		WillReturnRows(stopRows(stop{id: 4, routeOrder: 1, status: "waiting"}))
	mock.ExpectExec("UPDATE bookings SET transport_status").
		WithArgs("driver_en_route", int64(7), int64(4), "waiting").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := DispatchService{DB: db, Clock: fixedClock(2025, 3, 10, 8, 0)}
	b, err := svc.StartRoute(context.Background(), "2025-03-10", "morning", 7)
	if err != nil {
		t.Fatalf("StartRoute error: %v", err)
	}
	if b.ID != 4 || b.TransportStatus != models.TransportDriverEnRoute || !b.ClaimedBy(7) {
		t.Fatalf("unexpected stop %+v", b)
	}
}

func TestStartRoute_RepeatReturnsCurrentStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM class_sessions").WithArgs("morning").WillReturnRows(morningSession())
	mock.ExpectBegin()
	mock.ExpectQuery("transport_status IN \\('driver_en_route', 'driver_arrived'\\)").WithArgs("2025-03-10", "morning", int64(7)).
		WillReturnRows(stopRows(stop{id: 4, routeOrder: 1, driver: int64(7), status: "driver_en_route"}))
	mock.ExpectCommit()

	pub := &recordingPublisher{}
	svc := DispatchService{DB: db, Publisher: pub, Clock: fixedClock(2025, 3, 10, 8, 5)}
	b, err := svc.StartRoute(context.Background(), "2025-03-10", "morning", 7)
	if err != nil {
		t.Fatalf("StartRoute error: %v", err)
	}
	if b.ID != 4 || b.TransportStatus != models.TransportDriverEnRoute {
		t.Fatalf("expected current stop 4, got %+v", b)
	}
	if len(pub.events) != 0 {
		t.Fatalf("repeat start must not publish, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestArriveDestination_BulkDropOff(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM class_sessions").WithArgs("morning").WillReturnRows(morningSession())
	mock.ExpectExec("SET transport_status = 'dropped_off'").
		WithArgs(sqlmock.AnyArg(), "2025-03-10", "morning").
		WillReturnResult(sqlmock.NewResult(0, 4))

	pub := &recordingPublisher{}
	svc := DispatchService{DB: db, Publisher: pub, Clock: fixedClock(2025, 3, 10, 9, 30)}
	n, err := svc.ArriveDestination(context.Background(), "2025-03-10", "morning", nil)
	if err != nil {
		t.Fatalf("ArriveDestination error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 drop-offs, got %d", n)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeArrived || pub.events[0].Count != 4 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
