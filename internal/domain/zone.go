package domain

import (
	"fmt"
	"slices"

	"pickupcore/internal/domain/models"
)

// PointInPolygon is a ray-casting parity test with x = lng and y = lat.
//
// Points exactly on the boundary are not special-cased. For an axis-aligned
// ring this makes the minimum-x and minimum-y edges count as inside and the
// maximum-x and maximum-y edges as outside.
func PointInPolygon(p models.Point, ring [][2]float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > p.Lat) != (yj > p.Lat) && p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ResolveZone returns the first zone in priority order whose polygon contains p.
// Overlapping zones are resolved by priority, then by their order in zones.
func ResolveZone(p models.Point, zones []models.PickupZone) (string, bool) {
	ordered := slices.Clone(zones)
	slices.SortStableFunc(ordered, func(a, b models.PickupZone) int {
		return a.Priority - b.Priority
	})
	for _, z := range ordered {
		if len(z.Polygon) < 3 {
			continue
		}
		if PointInPolygon(p, z.Polygon) {
			return z.ID, true
		}
	}
	return "", false
}

// ValidatePolygon checks a [lng, lat] ring before it is stored.
func ValidatePolygon(ring [][2]float64) error {
	if len(ring) < 3 {
		return ValidationError{Field: "polygon", Msg: "needs at least 3 vertices"}
	}
	for i, v := range ring {
		if v[0] < -180 || v[0] > 180 {
			return ValidationError{Field: "polygon", Msg: fmt.Sprintf("vertex %d: longitude out of range", i)}
		}
		if v[1] < -90 || v[1] > 90 {
			return ValidationError{Field: "polygon", Msg: fmt.Sprintf("vertex %d: latitude out of range", i)}
		}
	}
	return nil
}
