package services

import (
	"context"
	"database/sql"
	"fmt"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"
	"pickupcore/internal/utils"
)

type ZoneService struct {
	DB        *sql.DB
	RequestID string
}

func (s ZoneService) repo() repositories.ZoneRepository {
	return repositories.ZoneRepository{DB: pickDB(s.DB)}
}

func (s ZoneService) List(ctx context.Context) ([]models.PickupZone, error) {
	zones, err := s.repo().List(ctx)
	if err != nil {
		return nil, wrapStore(err, "load zones")
	}
	return zones, nil
}

// Upsert creates or replaces zone id.
func (s ZoneService) Upsert(ctx context.Context, id string, in models.ZoneInput) (models.PickupZone, error) {
	key := utils.NormalizeKey(id)
	if key == "" {
		return models.PickupZone{}, domain.ValidationError{Field: "id", Msg: "required"}
	}
	if err := validateInput(in); err != nil {
		return models.PickupZone{}, err
	}
	if err := domain.ValidatePolygon(in.Polygon); err != nil {
		return models.PickupZone{}, err
	}

	z := models.PickupZone{
		ID:           key,
		Name:         utils.NormalizeSpace(in.Name),
		Color:        in.Color,
		Priority:     in.Priority,
		Polygon:      in.Polygon,
		MorningStart: in.MorningStart,
		MorningEnd:   in.MorningEnd,
		EveningStart: in.EveningStart,
		EveningEnd:   in.EveningEnd,
	}
	if err := s.repo().Upsert(ctx, z); err != nil {
		return models.PickupZone{}, wrapStore(err, "save zone")
	}
	utils.LogEvent(s.RequestID, "zone", "upsert", fmt.Sprintf("zone=%s vertices=%d priority=%d", z.ID, len(z.Polygon), z.Priority))
	return z, nil
}

// Resolve returns the zone containing (lat, lng); ok is false when the point
// falls outside every zone. An empty zone set is NotFound.
func (s ZoneService) Resolve(ctx context.Context, lat, lng float64) (string, bool, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return "", false, err
	}
	zones, err := s.List(ctx)
	if err != nil {
		return "", false, err
	}
	if len(zones) == 0 {
		return "", false, domain.NotFoundError{Resource: "pickup zones"}
	}
	id, ok := domain.ResolveZone(models.Point{Lat: lat, Lng: lng}, zones)
	return id, ok, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return domain.ValidationError{Field: "lat", Msg: "must be within [-90, 90]"}
	}
	if lng < -180 || lng > 180 {
		return domain.ValidationError{Field: "lng", Msg: "must be within [-180, 180]"}
	}
	return nil
}
