package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/events"
	"pickupcore/internal/repositories"
	"pickupcore/internal/utils"
)

// DispatchService drives the per-stop pickup flow for drivers.
type DispatchService struct {
	DB        *sql.DB
	Publisher events.Publisher
	Clock     Clock
	RequestID string
}

// AdvanceResult is the advanced stop plus the stop the chain reaction
// dispatched, if any.
type AdvanceResult struct {
	Booking models.Booking  `json:"booking"`
	Chained *models.Booking `json:"chained,omitempty"`
	NoOp    bool            `json:"noop"`
}

func (s DispatchService) db() *sql.DB {
	return pickDB(s.DB)
}

func (s DispatchService) publisher() events.Publisher {
	if s.Publisher != nil {
		return s.Publisher
	}
	return events.NopPublisher{}
}

func transitionUpdate(b models.Booking, tr domain.Transition, driverID int64, now time.Time) repositories.TransitionUpdate {
	u := repositories.TransitionUpdate{ID: b.ID, From: tr.From, To: tr.To, DriverID: driverID}
	if tr.SetPickupTime {
		u.PickupAt = &now
	}
	if tr.SetDropoffTime {
		u.DropoffAt = &now
	}
	return u
}

func transitionEvent(b models.Booking, from models.TransportStatus, driverID int64, at time.Time) events.Event {
	return events.Event{
		Type:      events.TypeTransition,
		Date:      b.Date,
		Session:   b.SessionID,
		BookingID: b.ID,
		From:      string(from),
		To:        string(b.TransportStatus),
		DriverID:  driverID,
		At:        at,
	}
}

// Advance moves a stop one step forward for driverID, provided it is still
// in expected. Repeating a completed step is a no-op. Boarding a guest
// dispatches the driver to the next waiting stop in the same transaction.
func (s DispatchService) Advance(ctx context.Context, bookingID, driverID int64, expected models.TransportStatus) (AdvanceResult, error) {
	if bookingID <= 0 {
		return AdvanceResult{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}

	var (
		res       AdvanceResult
		published []events.Event
	)
	now := s.Clock.Now()
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.BookingRepository{DB: tx}
		b, err := repo.GetByID(ctx, bookingID, true)
		if err != nil {
			return err
		}
		tr, err := domain.PlanAdvance(b, driverID, expected)
		if err != nil {
			return err
		}
		if tr.NoOp {
			res = AdvanceResult{Booking: b, NoOp: true}
			return nil
		}

		ok, err := repo.ApplyTransition(ctx, transitionUpdate(b, tr, driverID, now))
		if err != nil {
			return fmt.Errorf("advance booking %d: %w", b.ID, err)
		}
		if !ok {
			return domain.ConflictError{Resource: "booking", Msg: "stop changed concurrently"}
		}
		res.Booking = domain.ApplyTransition(b, tr, driverID, now)
		published = append(published, transitionEvent(res.Booking, tr.From, driverID, now))

		if !tr.Chain {
			return nil
		}
		after := repositories.CursorOf(b)
		next, found, err := repo.NextWaiting(ctx, b.Date, b.SessionID, driverID, &after)
		if err != nil {
			return fmt.Errorf("next waiting stop: %w", err)
		}
		if !found {
			return nil
		}
		chain := domain.Transition{
			From:        models.TransportWaiting,
			To:          models.TransportDriverEnRoute,
			ClaimDriver: next.DriverID == nil,
		}
		ok, err = repo.ApplyTransition(ctx, transitionUpdate(next, chain, driverID, now))
		if err != nil {
			return fmt.Errorf("dispatch booking %d: %w", next.ID, err)
		}
		if !ok {
			return domain.ConflictError{Resource: "booking", Msg: "next stop changed concurrently"}
		}
		chained := domain.ApplyTransition(next, chain, driverID, now)
		res.Chained = &chained
		published = append(published, transitionEvent(chained, chain.From, driverID, now))
		return nil
	})
	if err != nil {
		return AdvanceResult{}, wrapStore(err, "advance")
	}

	msg := fmt.Sprintf("booking=%d driver=%d to=%s noop=%v", res.Booking.ID, driverID, res.Booking.TransportStatus, res.NoOp)
	if res.Chained != nil {
		msg += fmt.Sprintf(" chained=%d", res.Chained.ID)
	}
	utils.LogEvent(s.RequestID, "dispatch", "advance", msg)
	s.publish(ctx, published...)
	return res, nil
}

// StartRoute dispatches driverID to the first waiting stop they may claim.
// A driver already heading to a stop in the session gets that stop back and
// nothing is dispatched.
func (s DispatchService) StartRoute(ctx context.Context, date, sessionID string, driverID int64) (models.Booking, error) {
	if driverID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "driver_id", Msg: "required"}
	}
	d, sess, err := s.Slot(ctx, date, sessionID)
	if err != nil {
		return models.Booking{}, err
	}

	var (
		out     models.Booking
		resumed bool
	)
	now := s.Clock.Now()
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.BookingRepository{DB: tx}
		cur, busy, err := repo.HeadingTo(ctx, d, sess.ID, driverID)
		if err != nil {
			return fmt.Errorf("current stop: %w", err)
		}
		if busy {
			out, resumed = cur, true
			return nil
		}
		next, found, err := repo.NextWaiting(ctx, d, sess.ID, driverID, nil)
		if err != nil {
			return fmt.Errorf("first waiting stop: %w", err)
		}
		if !found {
			return domain.NotFoundError{Resource: fmt.Sprintf("waiting stop for %s %s", d, sess.ID)}
		}
		tr := domain.Transition{
			From:        models.TransportWaiting,
			To:          models.TransportDriverEnRoute,
			ClaimDriver: next.DriverID == nil,
		}
		ok, err := repo.ApplyTransition(ctx, transitionUpdate(next, tr, driverID, now))
		if err != nil {
			return fmt.Errorf("dispatch booking %d: %w", next.ID, err)
		}
		if !ok {
			return domain.ConflictError{Resource: "booking", Msg: "stop changed concurrently"}
		}
		out = domain.ApplyTransition(next, tr, driverID, now)
		return nil
	})
	if err != nil {
		return models.Booking{}, wrapStore(err, "start route")
	}

	utils.LogEvent(s.RequestID, "dispatch", "start_route", fmt.Sprintf("date=%s session=%s driver=%d booking=%d resumed=%v", d, sess.ID, driverID, out.ID, resumed))
	if resumed {
		return out, nil
	}
	s.publish(ctx, transitionEvent(out, models.TransportWaiting, driverID, now))
	return out, nil
}

// ArriveDestination drops off every on_board stop of the session at once.
// driverID limits it to one driver's guests. It never chains.
func (s DispatchService) ArriveDestination(ctx context.Context, date, sessionID string, driverID *int64) (int64, error) {
	d, sess, err := s.Slot(ctx, date, sessionID)
	if err != nil {
		return 0, err
	}
	now := s.Clock.Now()
	n, err := repositories.BookingRepository{DB: s.db()}.DropOffAll(ctx, d, sess.ID, driverID, now)
	if err != nil {
		return 0, wrapStore(err, "arrive destination")
	}

	e := events.Event{Type: events.TypeArrived, Date: d, Session: sess.ID, Count: n, At: now}
	if driverID != nil {
		e.DriverID = *driverID
	}
	utils.LogEvent(s.RequestID, "dispatch", "arrive", fmt.Sprintf("date=%s session=%s dropped=%d", d, sess.ID, n))
	if n > 0 {
		s.publish(ctx, e)
	}
	return n, nil
}

// ListStops returns the session's active stops in route order.
func (s DispatchService) ListStops(ctx context.Context, date, sessionID string, driverID *int64) ([]models.Booking, error) {
	d, sess, err := s.Slot(ctx, date, sessionID)
	if err != nil {
		return nil, err
	}
	stops, err := repositories.BookingRepository{DB: s.db()}.ListStops(ctx, d, sess.ID, driverID)
	if err != nil {
		return nil, wrapStore(err, "list stops")
	}
	return stops, nil
}

// Slot validates a (date, session) pair and returns the canonical date and session.
func (s DispatchService) Slot(ctx context.Context, date, sessionID string) (string, models.Session, error) {
	d, err := normalizeDate("date", date)
	if err != nil {
		return "", models.Session{}, err
	}
	sess, err := knownSession(ctx, repositories.SessionRepository{DB: s.db()}, sessionID)
	if err != nil {
		return "", models.Session{}, err
	}
	return d, sess, nil
}

// publish runs after commit. Feed failures are logged only.
func (s DispatchService) publish(ctx context.Context, evts ...events.Event) {
	p := s.publisher()
	for _, e := range evts {
		if err := p.Publish(ctx, e); err != nil {
			utils.LogEvent(s.RequestID, "dispatch", "publish_failed", fmt.Sprintf("booking=%d err=%v", e.BookingID, err))
		}
	}
}
