package repositories

import (
	"context"
	"database/sql"
	"errors"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
)

// SessionRepository reads class_sessions reference data.
type SessionRepository struct {
	DB intdb.Querier
}

func (r SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	rows, err := pick(r.DB).QueryContext(ctx, `
		SELECT id, name, base_capacity, cutoff_hour, sort_order
		FROM class_sessions
		ORDER BY sort_order ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Session{}
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.BaseCapacity, &s.CutoffHour, &s.SortOrder); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	var s models.Session
	err := pick(r.DB).QueryRowContext(ctx, `
		SELECT id, name, base_capacity, cutoff_hour, sort_order
		FROM class_sessions
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&s.ID, &s.Name, &s.BaseCapacity, &s.CutoffHour, &s.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return s, domain.NotFoundError{Resource: "session " + id, Err: err}
	}
	return s, err
}
