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

// MaxRangeDays caps a batch availability query.
const MaxRangeDays = 62

type AvailabilityService struct {
	DB    *sql.DB
	Clock Clock
}

func (s AvailabilityService) repos() (repositories.SessionRepository, repositories.OverrideRepository, repositories.BookingRepository) {
	db := pickDB(s.DB)
	return repositories.SessionRepository{DB: db}, repositories.OverrideRepository{DB: db}, repositories.BookingRepository{DB: db}
}

// GetDayAvailability returns stats for every session on date.
func (s AvailabilityService) GetDayAvailability(ctx context.Context, date string) (models.DayAvailability, error) {
	d, err := normalizeDate("date", date)
	if err != nil {
		return nil, err
	}
	grid, err := s.load(ctx, d, d)
	if err != nil {
		return nil, err
	}
	return grid[d], nil
}

// GetRangeAvailability returns date -> session -> stats for from..to inclusive.
func (s AvailabilityService) GetRangeAvailability(ctx context.Context, from, to string) (map[string]models.DayAvailability, error) {
	f, err := normalizeDate("from", from)
	if err != nil {
		return nil, err
	}
	t, err := normalizeDate("to", to)
	if err != nil {
		return nil, err
	}
	if t < f {
		return nil, domain.ValidationError{Field: "to", Msg: "must not be before from"}
	}
	if n := len(utils.DatesBetween(f, t)); n > MaxRangeDays {
		return nil, domain.ValidationError{Field: "to", Msg: fmt.Sprintf("range of %d days exceeds %d", n, MaxRangeDays)}
	}
	return s.load(ctx, f, t)
}

// GetMonthAvailability takes a YYYY-MM month.
func (s AvailabilityService) GetMonthAvailability(ctx context.Context, month string) (map[string]models.DayAvailability, error) {
	from, to, err := utils.MonthBounds(month)
	if err != nil {
		return nil, domain.ValidationError{Field: "month", Msg: err.Error(), Err: err}
	}
	return s.load(ctx, from, to)
}

// load issues three queries regardless of the range length: sessions,
// grouped booking sums and overrides.
func (s AvailabilityService) load(ctx context.Context, from, to string) (map[string]models.DayAvailability, error) {
	sessionRepo, overrideRepo, bookingRepo := s.repos()

	sessions, err := sessionRepo.List(ctx)
	if err != nil {
		return nil, wrapStore(err, "load sessions")
	}
	booked, err := bookingRepo.SumActivePax(ctx, from, to)
	if err != nil {
		return nil, wrapStore(err, "sum bookings")
	}
	overrides, err := overrideRepo.ListRange(ctx, from, to)
	if err != nil {
		return nil, wrapStore(err, "load overrides")
	}

	byKey := make(map[string]*models.DayOverride, len(overrides))
	for i := range overrides {
		ov := overrides[i]
		byKey[ov.Date+"|"+ov.SessionID] = &ov
	}

	now := s.Clock.Now()
	out := map[string]models.DayAvailability{}
	for _, d := range utils.DatesBetween(from, to) {
		day := models.DayAvailability{}
		for _, sess := range sessions {
			locked := domain.IsLocked(d, sess.CutoffHour, now)
			day[sess.ID] = domain.ComputeSessionStats(sess, booked[d][sess.ID], byKey[d+"|"+sess.ID], locked)
		}
		out[d] = day
	}
	return out, nil
}
