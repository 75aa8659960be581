package models

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PickupZone groups pickup locations for driver routing.
// Polygon is an ordered ring of [lng, lat] vertices; the ring is implicitly closed.
type PickupZone struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Color        string       `json:"color"`
	Priority     int          `json:"priority"`
	Polygon      [][2]float64 `json:"polygon"`
	MorningStart string       `json:"morningStart"`
	MorningEnd   string       `json:"morningEnd"`
	EveningStart string       `json:"eveningStart"`
	EveningEnd   string       `json:"eveningEnd"`
}

// ZoneInput is the payload for creating or replacing a zone.
type ZoneInput struct {
	Name         string       `json:"name" validate:"required,max=100"`
	Color        string       `json:"color" validate:"omitempty,hexcolor"`
	Priority     int          `json:"priority" validate:"gte=0"`
	Polygon      [][2]float64 `json:"polygon" validate:"required"`
	MorningStart string       `json:"morningStart" validate:"omitempty,datetime=15:04"`
	MorningEnd   string       `json:"morningEnd" validate:"omitempty,datetime=15:04"`
	EveningStart string       `json:"eveningStart" validate:"omitempty,datetime=15:04"`
	EveningEnd   string       `json:"eveningEnd" validate:"omitempty,datetime=15:04"`
}
