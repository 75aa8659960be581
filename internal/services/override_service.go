package services

import (
	"context"
	"database/sql"
	"fmt"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"
	"pickupcore/internal/utils"
)

// OverrideService edits capacity exceptions. Every write re-checks the lock
// policy against the clock at the moment of writing.
type OverrideService struct {
	DB        *sql.DB
	Clock     Clock
	RequestID string
}

func (s OverrideService) db() *sql.DB {
	return pickDB(s.DB)
}

// knownSession resolves sessionID, reporting unknown ids as invalid input.
func knownSession(ctx context.Context, repo repositories.SessionRepository, sessionID string) (models.Session, error) {
	id := utils.NormalizeKey(sessionID)
	if id == "" {
		return models.Session{}, domain.ValidationError{Field: "session", Msg: "required"}
	}
	sess, err := repo.GetByID(ctx, id)
	if domain.IsNotFound(err) {
		return sess, domain.ValidationError{Field: "session", Msg: fmt.Sprintf("unknown session %q", id), Err: err}
	}
	if err != nil {
		return sess, wrapStore(err, "load session")
	}
	return sess, nil
}

func (s OverrideService) UpsertOverride(ctx context.Context, date, sessionID string, in models.OverrideInput) (models.DayOverride, error) {
	d, err := normalizeDate("date", date)
	if err != nil {
		return models.DayOverride{}, err
	}
	if err := validateInput(in); err != nil {
		return models.DayOverride{}, err
	}
	sess, err := knownSession(ctx, repositories.SessionRepository{DB: s.db()}, sessionID)
	if err != nil {
		return models.DayOverride{}, err
	}
	if domain.IsLocked(d, sess.CutoffHour, s.Clock.Now()) {
		return models.DayOverride{}, domain.LockedError{Date: d, Session: sess.ID}
	}

	ov := models.DayOverride{
		Date:           d,
		SessionID:      sess.ID,
		IsClosed:       in.IsClosed,
		CustomCapacity: in.CustomCapacity,
		ClosureReason:  in.ClosureReason,
	}
	if err := (repositories.OverrideRepository{DB: s.db()}).Upsert(ctx, ov); err != nil {
		return models.DayOverride{}, wrapStore(err, "save override")
	}
	utils.LogEvent(s.RequestID, "override", "upsert", fmt.Sprintf("date=%s session=%s closed=%v", d, sess.ID, ov.IsClosed))
	return ov, nil
}

// ClearOverride drops the exception so the slot falls back to base capacity.
func (s OverrideService) ClearOverride(ctx context.Context, date, sessionID string) error {
	d, err := normalizeDate("date", date)
	if err != nil {
		return err
	}
	sess, err := knownSession(ctx, repositories.SessionRepository{DB: s.db()}, sessionID)
	if err != nil {
		return err
	}
	if domain.IsLocked(d, sess.CutoffHour, s.Clock.Now()) {
		return domain.LockedError{Date: d, Session: sess.ID}
	}
	removed, err := repositories.OverrideRepository{DB: s.db()}.Delete(ctx, d, sess.ID)
	if err != nil {
		return wrapStore(err, "delete override")
	}
	if !removed {
		return domain.NotFoundError{Resource: fmt.Sprintf("override %s %s", d, sess.ID)}
	}
	utils.LogEvent(s.RequestID, "override", "clear", fmt.Sprintf("date=%s session=%s", d, sess.ID))
	return nil
}

// QuickCloseDay closes every session of date in one transaction. If any
// session is already locked nothing is written.
func (s OverrideService) QuickCloseDay(ctx context.Context, date, reason string) ([]models.DayOverride, error) {
	d, err := normalizeDate("date", date)
	if err != nil {
		return nil, err
	}
	sessions, err := repositories.SessionRepository{DB: s.db()}.List(ctx)
	if err != nil {
		return nil, wrapStore(err, "load sessions")
	}
	now := s.Clock.Now()
	for _, sess := range sessions {
		if domain.IsLocked(d, sess.CutoffHour, now) {
			return nil, domain.LockedError{Date: d, Session: sess.ID}
		}
	}

	var why *string
	if r := utils.NormalizeSpace(reason); r != "" {
		why = &r
	}

	var out []models.DayOverride
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.OverrideRepository{DB: tx}
		for _, sess := range sessions {
			if err := repo.Close(ctx, d, sess.ID, why); err != nil {
				return fmt.Errorf("close %s: %w", sess.ID, err)
			}
		}
		// Close keeps custom_capacity, so report the stored rows.
		stored, err := repo.ListRange(ctx, d, d)
		if err != nil {
			return fmt.Errorf("reload overrides: %w", err)
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, wrapStore(err, "quick close")
	}
	utils.LogEvent(s.RequestID, "override", "quick_close", fmt.Sprintf("date=%s sessions=%d", d, len(out)))
	return out, nil
}
