package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
)

// BookingRepository covers bookings for capacity sums and dispatch.
// Bind DB to a *sql.Tx for the locked read-modify-write paths.
type BookingRepository struct {
	DB intdb.Querier
}

const bookingColumns = `
	id,
	DATE_FORMAT(trip_date, '%Y-%m-%d'),
	session_id,
	pax,
	status,
	guest_name,
	guest_phone,
	zone_id,
	hotel_name,
	lat,
	lng,
	pickup_time,
	route_order,
	assigned_driver_id,
	transport_status,
	actual_pickup_time,
	actual_dropoff_time,
	created_at`

// stopOrder is the deterministic stop ordering; ties on route_order fall back to creation time.
const stopOrder = `ORDER BY route_order ASC, created_at ASC, id ASC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b         models.Booking
		zoneID    sql.NullString
		lat, lng  sql.NullFloat64
		driverID  sql.NullInt64
		status    string
		pickedUp  sql.NullTime
		droppedAt sql.NullTime
	)
	if err := row.Scan(
		&b.ID,
		&b.Date,
		&b.SessionID,
		&b.Pax,
		&b.Status,
		&b.GuestName,
		&b.GuestPhone,
		&zoneID,
		&b.HotelName,
		&lat,
		&lng,
		&b.PickupTime,
		&b.RouteOrder,
		&driverID,
		&status,
		&pickedUp,
		&droppedAt,
		&b.CreatedAt,
	); err != nil {
		return b, err
	}
	b.ZoneID = nullStringPtr(zoneID)
	b.Lat = nullFloatPtr(lat)
	b.Lng = nullFloatPtr(lng)
	b.DriverID = nullInt64Ptr(driverID)
	b.TransportStatus = models.TransportStatus(status)
	b.ActualPickupTime = nullTimePtr(pickedUp)
	b.ActualDropoffTime = nullTimePtr(droppedAt)
	return b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID loads one booking. forUpdate locks the row until the transaction ends.
func (r BookingRepository) GetByID(ctx context.Context, id int64, forUpdate bool) (models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(pick(r.DB).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: fmt.Sprintf("booking %d", id), Err: err}
	}
	return b, err
}

// SumActivePax returns date -> session -> booked pax for the whole range in one query.
func (r BookingRepository) SumActivePax(ctx context.Context, from, to string) (map[string]map[string]int, error) {
	rows, err := pick(r.DB).QueryContext(ctx, `
		SELECT DATE_FORMAT(trip_date, '%Y-%m-%d'), session_id, COALESCE(SUM(pax), 0)
		FROM bookings
		WHERE trip_date BETWEEN ? AND ?
		  AND status <> 'cancelled'
		GROUP BY trip_date, session_id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]map[string]int{}
	for rows.Next() {
		var (
			date, session string
			pax           int
		)
		if err := rows.Scan(&date, &session, &pax); err != nil {
			return out, err
		}
		if out[date] == nil {
			out[date] = map[string]int{}
		}
		out[date][session] = pax
	}
	return out, rows.Err()
}

// ListStops returns the active stops of a session in route order, optionally for one driver.
func (r BookingRepository) ListStops(ctx context.Context, date, sessionID string, driverID *int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_date = ? AND session_id = ? AND status <> 'cancelled'`
	args := []any{date, sessionID}
	if driverID != nil {
		query += ` AND assigned_driver_id = ?`
		args = append(args, *driverID)
	}
	query += ` ` + stopOrder

	rows, err := pick(r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// StopCursor is a position in stopOrder. Stops sharing a route order are
// told apart by created_at, then id.
type StopCursor struct {
	RouteOrder int
	CreatedAt  time.Time
	ID         int64
}

// CursorOf returns the stopOrder position of b.
func CursorOf(b models.Booking) StopCursor {
	return StopCursor{RouteOrder: b.RouteOrder, CreatedAt: b.CreatedAt, ID: b.ID}
}

// NextWaiting locks and returns the first waiting stop the driver may claim:
// unclaimed or already theirs, and strictly after the cursor when given.
func (r BookingRepository) NextWaiting(ctx context.Context, date, sessionID string, driverID int64, after *StopCursor) (models.Booking, bool, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_date = ? AND session_id = ?
		  AND status <> 'cancelled'
		  AND transport_status = 'waiting'
		  AND (assigned_driver_id IS NULL OR assigned_driver_id = ?)`
	args := []any{date, sessionID, driverID}
	if after != nil {
		query += ` AND (route_order, created_at, id) > (?, ?, ?)`
		args = append(args, after.RouteOrder, after.CreatedAt, after.ID)
	}
	query += ` ` + stopOrder + ` LIMIT 1 FOR UPDATE`

	b, err := scanBooking(pick(r.DB).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return b, false, nil
	}
	if err != nil {
		return b, false, err
	}
	return b, true, nil
}

// HeadingTo locks and returns the stop driverID is currently driving to or
// waiting at in the session, if any.
func (r BookingRepository) HeadingTo(ctx context.Context, date, sessionID string, driverID int64) (models.Booking, bool, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_date = ? AND session_id = ?
		  AND status <> 'cancelled'
		  AND assigned_driver_id = ?
		  AND transport_status IN ('driver_en_route', 'driver_arrived')
		` + stopOrder + ` LIMIT 1 FOR UPDATE`

	b, err := scanBooking(pick(r.DB).QueryRowContext(ctx, query, date, sessionID, driverID))
	if errors.Is(err, sql.ErrNoRows) {
		return b, false, nil
	}
	if err != nil {
		return b, false, err
	}
	return b, true, nil
}

// TransitionUpdate is one guarded state change.
type TransitionUpdate struct {
	ID        int64
	From      models.TransportStatus
	To        models.TransportStatus
	DriverID  int64
	PickupAt  *time.Time
	DropoffAt *time.Time
}

// ApplyTransition writes the change only if the row is still active and in
// From; it reports false when another actor got there first.
func (r BookingRepository) ApplyTransition(ctx context.Context, u TransitionUpdate) (bool, error) {
	sets := []string{"transport_status = ?", "assigned_driver_id = COALESCE(assigned_driver_id, ?)"}
	args := []any{string(u.To), u.DriverID}
	if u.PickupAt != nil {
		sets = append(sets, "actual_pickup_time = ?")
		args = append(args, *u.PickupAt)
	}
	if u.DropoffAt != nil {
		sets = append(sets, "actual_dropoff_time = ?")
		args = append(args, *u.DropoffAt)
	}
	args = append(args, u.ID, string(u.From))

	res, err := pick(r.DB).ExecContext(ctx, `
		UPDATE bookings SET `+strings.Join(sets, ", ")+`
		WHERE id = ? AND transport_status = ? AND status <> 'cancelled'
	`, args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// DropOffAll moves every on_board stop of a session to dropped_off in one statement.
func (r BookingRepository) DropOffAll(ctx context.Context, date, sessionID string, driverID *int64, at time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET transport_status = 'dropped_off', actual_dropoff_time = ?
		WHERE trip_date = ? AND session_id = ?
		  AND status <> 'cancelled'
		  AND transport_status = 'on_board'`
	args := []any{at, date, sessionID}
	if driverID != nil {
		query += ` AND assigned_driver_id = ?`
		args = append(args, *driverID)
	}
	res, err := pick(r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Insert stores a new active, waiting booking and returns its id.
func (r BookingRepository) Insert(ctx context.Context, b models.Booking) (int64, error) {
	res, err := pick(r.DB).ExecContext(ctx, `
		INSERT INTO bookings
			(trip_date, session_id, pax, status, guest_name, guest_phone, zone_id, hotel_name, lat, lng, pickup_time, route_order, transport_status, created_at)
		VALUES (?, ?, ?, 'active', ?, ?, ?, ?, ?, ?, ?, ?, 'waiting', ?)
	`,
		b.Date,
		b.SessionID,
		b.Pax,
		b.GuestName,
		b.GuestPhone,
		ptrArg(b.ZoneID),
		b.HotelName,
		ptrArg(b.Lat),
		ptrArg(b.Lng),
		b.PickupTime,
		b.RouteOrder,
		b.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Cancel reports whether the booking changed from active to cancelled.
func (r BookingRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	res, err := pick(r.DB).ExecContext(ctx, `UPDATE bookings SET status = 'cancelled' WHERE id = ? AND status <> 'cancelled'`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// PickupPatch lists the pickup columns to overwrite; nil fields are kept.
type PickupPatch struct {
	RouteOrder *int
	DriverID   *int64
	HotelName  *string
	Lat        *float64
	Lng        *float64
	ZoneID     *string
	ClearZone  bool
	PickupTime *string
}

// UpdatePickup applies an admin edit. Driver changes are only written while
// the stop is still waiting, so a claimed route is never reassigned.
func (r BookingRepository) UpdatePickup(ctx context.Context, id int64, p PickupPatch) (bool, error) {
	sets := []string{}
	args := []any{}

	add := func(cond bool, column string, val any) {
		if cond {
			sets = append(sets, column+" = ?")
			args = append(args, val)
		}
	}
	add(p.RouteOrder != nil, "route_order", ptrArg(p.RouteOrder))
	add(p.HotelName != nil, "hotel_name", ptrArg(p.HotelName))
	add(p.Lat != nil, "lat", ptrArg(p.Lat))
	add(p.Lng != nil, "lng", ptrArg(p.Lng))
	add(p.PickupTime != nil, "pickup_time", ptrArg(p.PickupTime))
	switch {
	case p.ZoneID != nil:
		add(true, "zone_id", *p.ZoneID)
	case p.ClearZone:
		sets = append(sets, "zone_id = NULL")
	}
	add(p.DriverID != nil, "assigned_driver_id", ptrArg(p.DriverID))

	if len(sets) == 0 {
		return true, nil
	}

	where := ` WHERE id = ? AND status <> 'cancelled'`
	args = append(args, id)
	if p.DriverID != nil {
		where += ` AND transport_status = 'waiting'`
	}

	res, err := pick(r.DB).ExecContext(ctx, `UPDATE bookings SET `+strings.Join(sets, ", ")+where, args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
