package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"
	"pickupcore/internal/utils"
)

// capacityLockTimeout is how long a booking waits, in seconds, for another
// booking on the same slot to finish.
const capacityLockTimeout = 5

type BookingService struct {
	DB        *sql.DB
	Clock     Clock
	RequestID string
}

func (s BookingService) db() *sql.DB {
	return pickDB(s.DB)
}

func (s BookingService) bookings() repositories.BookingRepository {
	return repositories.BookingRepository{DB: s.db()}
}

func capacityLockKey(date, sessionID string) string {
	return "capacity:" + date + ":" + sessionID
}

// CreateBooking stores a booking if the slot is open, unlocked and has room.
// Bookings on the same (date, session) are serialised by a named lock so two
// requests cannot both take the last seats.
func (s BookingService) CreateBooking(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	if err := validateInput(in); err != nil {
		return models.Booking{}, err
	}
	d, err := normalizeDate("date", in.Date)
	if err != nil {
		return models.Booking{}, err
	}
	if (in.Lat == nil) != (in.Lng == nil) {
		return models.Booking{}, domain.ValidationError{Field: "lat", Msg: "lat and lng must be given together"}
	}
	sess, err := knownSession(ctx, repositories.SessionRepository{DB: s.db()}, in.SessionID)
	if err != nil {
		return models.Booking{}, err
	}
	now := s.Clock.Now()
	if domain.IsLocked(d, sess.CutoffHour, now) {
		return models.Booking{}, domain.LockedError{Date: d, Session: sess.ID}
	}

	zoneID, err := s.resolveZone(ctx, in.Lat, in.Lng)
	if err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		Date:            d,
		SessionID:       sess.ID,
		Pax:             in.Pax,
		Status:          models.BookingActive,
		GuestName:       utils.NormalizeSpace(in.GuestName),
		GuestPhone:      utils.NormalizeSpace(in.GuestPhone),
		ZoneID:          zoneID,
		HotelName:       utils.NormalizeSpace(in.HotelName),
		Lat:             in.Lat,
		Lng:             in.Lng,
		PickupTime:      in.PickupTime,
		RouteOrder:      models.UnassignedRouteOrder,
		TransportStatus: models.TransportWaiting,
		CreatedAt:       now,
	}

	key := capacityLockKey(d, sess.ID)
	err = intdb.WithNamedLock(ctx, s.db(), key, capacityLockTimeout, func(tx *sql.Tx) error {
		booked, err := repositories.BookingRepository{DB: tx}.SumActivePax(ctx, d, d)
		if err != nil {
			return fmt.Errorf("sum bookings: %w", err)
		}
		overrides, err := repositories.OverrideRepository{DB: tx}.ListRange(ctx, d, d)
		if err != nil {
			return fmt.Errorf("load override: %w", err)
		}
		var ov *models.DayOverride
		for i := range overrides {
			if overrides[i].SessionID == sess.ID {
				ov = &overrides[i]
			}
		}

		stats := domain.ComputeSessionStats(sess, booked[d][sess.ID], ov, false)
		if stats.Status == models.StatusClosed {
			return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("%s %s is closed", d, sess.ID)}
		}
		if in.Pax > stats.Remaining {
			return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("only %d seats left", stats.Remaining)}
		}

		id, err := repositories.BookingRepository{DB: tx}.Insert(ctx, b)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		b.ID = id
		return nil
	})
	if errors.Is(err, intdb.ErrLockTimeout) {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "slot is busy, retry", Err: err}
	}
	if err != nil {
		return models.Booking{}, wrapStore(err, "create booking")
	}

	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("id=%d date=%s session=%s pax=%d", b.ID, d, sess.ID, b.Pax))
	return b, nil
}

func (s BookingService) resolveZone(ctx context.Context, lat, lng *float64) (*string, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	zones, err := repositories.ZoneRepository{DB: s.db()}.List(ctx)
	if err != nil {
		return nil, wrapStore(err, "load zones")
	}
	id, ok := domain.ResolveZone(models.Point{Lat: *lat, Lng: *lng}, zones)
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// CancelBooking is idempotent: cancelling a cancelled booking returns it unchanged.
func (s BookingService) CancelBooking(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	b, err := s.bookings().GetByID(ctx, id, false)
	if err != nil {
		return models.Booking{}, wrapStore(err, "load booking")
	}
	if !b.IsActive() {
		return b, nil
	}
	sess, err := repositories.SessionRepository{DB: s.db()}.GetByID(ctx, b.SessionID)
	if err != nil {
		return models.Booking{}, wrapStore(err, "load session")
	}
	if domain.IsLocked(b.Date, sess.CutoffHour, s.Clock.Now()) {
		return models.Booking{}, domain.LockedError{Date: b.Date, Session: b.SessionID}
	}

	if _, err := s.bookings().Cancel(ctx, id); err != nil {
		return models.Booking{}, wrapStore(err, "cancel booking")
	}
	b.Status = models.BookingCancelled
	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("id=%d date=%s session=%s", id, b.Date, b.SessionID))
	return b, nil
}

// UpdatePickup applies an admin edit to a stop. Coordinates re-resolve the
// zone; a driver can only be (re)assigned while the stop is still waiting.
func (s BookingService) UpdatePickup(ctx context.Context, id int64, upd models.PickupUpdate) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	if err := validateInput(upd); err != nil {
		return models.Booking{}, err
	}
	if (upd.Lat == nil) != (upd.Lng == nil) {
		return models.Booking{}, domain.ValidationError{Field: "lat", Msg: "lat and lng must be given together"}
	}

	b, err := s.bookings().GetByID(ctx, id, false)
	if err != nil {
		return models.Booking{}, wrapStore(err, "load booking")
	}
	if !b.IsActive() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}
	if upd.DriverID != nil {
		if _, err := (repositories.DriverRepository{DB: s.db()}).GetByID(ctx, *upd.DriverID); err != nil {
			if domain.IsNotFound(err) {
				return models.Booking{}, domain.ValidationError{Field: "driverId", Msg: "unknown driver", Err: err}
			}
			return models.Booking{}, wrapStore(err, "load driver")
		}
		if b.TransportStatus != models.TransportWaiting && !b.ClaimedBy(*upd.DriverID) {
			return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "stop already left waiting"}
		}
	}

	patch := repositories.PickupPatch{
		RouteOrder: upd.RouteOrder,
		HotelName:  upd.HotelName,
		Lat:        upd.Lat,
		Lng:        upd.Lng,
		PickupTime: upd.PickupTime,
	}
	if upd.DriverID != nil && !b.ClaimedBy(*upd.DriverID) {
		patch.DriverID = upd.DriverID
	}
	if upd.Lat != nil {
		zoneID, err := s.resolveZone(ctx, upd.Lat, upd.Lng)
		if err != nil {
			return models.Booking{}, err
		}
		patch.ZoneID = zoneID
		patch.ClearZone = zoneID == nil
	}

	ok, err := s.bookings().UpdatePickup(ctx, id, patch)
	if err != nil {
		return models.Booking{}, wrapStore(err, "update pickup")
	}

	out, err := s.bookings().GetByID(ctx, id, false)
	if err != nil {
		return models.Booking{}, wrapStore(err, "reload booking")
	}
	if !ok && patch.DriverID != nil && out.TransportStatus != models.TransportWaiting {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "stop already left waiting"}
	}
	utils.LogEvent(s.RequestID, "booking", "update_pickup", fmt.Sprintf("id=%d route_order=%d", id, out.RouteOrder))
	return out, nil
}
