package repositories

import (
	"context"
	"database/sql"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain/models"
)

// OverrideRepository stores day_overrides, at most one row per (date, session).
type OverrideRepository struct {
	DB intdb.Querier
}

// ListRange loads every override between from and to inclusive in one query.
func (r OverrideRepository) ListRange(ctx context.Context, from, to string) ([]models.DayOverride, error) {
	rows, err := pick(r.DB).QueryContext(ctx, `
		SELECT DATE_FORMAT(override_date, '%Y-%m-%d'), session_id, is_closed, custom_capacity, closure_reason
		FROM day_overrides
		WHERE override_date BETWEEN ? AND ?
		ORDER BY override_date ASC, session_id ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DayOverride{}
	for rows.Next() {
		var (
			ov       models.DayOverride
			capacity sql.NullInt64
			reason   sql.NullString
		)
		if err := rows.Scan(&ov.Date, &ov.SessionID, &ov.IsClosed, &capacity, &reason); err != nil {
			return out, err
		}
		ov.CustomCapacity = nullIntPtr(capacity)
		ov.ClosureReason = nullStringPtr(reason)
		out = append(out, ov)
	}
	return out, rows.Err()
}

// Upsert is idempotent: the unique (override_date, session_id) key turns a
// repeated write into an update of the same row.
func (r OverrideRepository) Upsert(ctx context.Context, ov models.DayOverride) error {
	_, err := pick(r.DB).ExecContext(ctx, `
		INSERT INTO day_overrides (override_date, session_id, is_closed, custom_capacity, closure_reason)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			is_closed = VALUES(is_closed),
			custom_capacity = VALUES(custom_capacity),
			closure_reason = VALUES(closure_reason)
	`, ov.Date, ov.SessionID, ov.IsClosed, ptrArg(ov.CustomCapacity), ptrArg(ov.ClosureReason))
	return err
}

// Delete reports whether a row was removed.
func (r OverrideRepository) Delete(ctx context.Context, date, sessionID string) (bool, error) {
	res, err := pick(r.DB).ExecContext(ctx, `DELETE FROM day_overrides WHERE override_date = ? AND session_id = ?`, date, sessionID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Close marks (date, session) closed, keeping any custom capacity so a later
// reopen restores it.
func (r OverrideRepository) Close(ctx context.Context, date, sessionID string, reason *string) error {
	_, err := pick(r.DB).ExecContext(ctx, `
		INSERT INTO day_overrides (override_date, session_id, is_closed, custom_capacity, closure_reason)
		VALUES (?, ?, 1, NULL, ?)
		ON DUPLICATE KEY UPDATE
			is_closed = 1,
			closure_reason = VALUES(closure_reason)
	`, date, sessionID, ptrArg(reason))
	return err
}
