package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain/models"
)

// ZoneRepository stores pickup_zones with their polygon as a JSON ring.
type ZoneRepository struct {
	DB intdb.Querier
}

// List returns zones in resolution priority order.
func (r ZoneRepository) List(ctx context.Context) ([]models.PickupZone, error) {
	rows, err := pick(r.DB).QueryContext(ctx, `
		SELECT id, name, color, priority, polygon, morning_start, morning_end, evening_start, evening_end
		FROM pickup_zones
		ORDER BY priority ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PickupZone{}
	for rows.Next() {
		var (
			z       models.PickupZone
			polygon []byte
		)
		if err := rows.Scan(&z.ID, &z.Name, &z.Color, &z.Priority, &polygon, &z.MorningStart, &z.MorningEnd, &z.EveningStart, &z.EveningEnd); err != nil {
			return out, err
		}
		if err := json.Unmarshal(polygon, &z.Polygon); err != nil {
			return out, fmt.Errorf("zone %s polygon: %w", z.ID, err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r ZoneRepository) Upsert(ctx context.Context, z models.PickupZone) error {
	polygon, err := json.Marshal(z.Polygon)
	if err != nil {
		return err
	}
	_, err = pick(r.DB).ExecContext(ctx, `
		INSERT INTO pickup_zones (id, name, color, priority, polygon, morning_start, morning_end, evening_start, evening_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			color = VALUES(color),
			priority = VALUES(priority),
			polygon = VALUES(polygon),
			morning_start = VALUES(morning_start),
			morning_end = VALUES(morning_end),
			evening_start = VALUES(evening_start),
			evening_end = VALUES(evening_end)
	`, z.ID, z.Name, z.Color, z.Priority, string(polygon), z.MorningStart, z.MorningEnd, z.EveningStart, z.EveningEnd)
	return err
}
