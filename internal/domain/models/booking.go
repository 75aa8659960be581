package models

import "time"

// TransportStatus is a stop's position in the pickup flow.
type TransportStatus string

const (
	TransportWaiting       TransportStatus = "waiting"
	TransportDriverEnRoute TransportStatus = "driver_en_route"
	TransportDriverArrived TransportStatus = "driver_arrived"
	TransportOnBoard       TransportStatus = "on_board"
	TransportDroppedOff    TransportStatus = "dropped_off"
)

// Booking lifecycle status. Cancelled bookings never count toward capacity or dispatch.
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// UnassignedRouteOrder sorts stops without a manual order after ordered ones.
const UnassignedRouteOrder = 999

// Booking is one guest party for a class session, including its pickup stop.
type Booking struct {
	ID                int64           `json:"id"`
	Date              string          `json:"date"`
	SessionID         string          `json:"session"`
	Pax               int             `json:"pax"`
	Status            string          `json:"status"`
	GuestName         string          `json:"guestName"`
	GuestPhone        string          `json:"guestPhone"`
	ZoneID            *string         `json:"zoneId"`
	HotelName         string          `json:"hotelName"`
	Lat               *float64        `json:"lat"`
	Lng               *float64        `json:"lng"`
	PickupTime        string          `json:"pickupTime"`
	RouteOrder        int             `json:"routeOrder"`
	DriverID          *int64          `json:"driverId"`
	TransportStatus   TransportStatus `json:"transportStatus"`
	ActualPickupTime  *time.Time      `json:"actualPickupTime"`
	ActualDropoffTime *time.Time      `json:"actualDropoffTime"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// IsActive reports whether the booking still counts toward capacity and dispatch.
func (b Booking) IsActive() bool {
	return b.Status != BookingCancelled
}

// ClaimedBy reports whether driverID owns the stop.
func (b Booking) ClaimedBy(driverID int64) bool {
	return b.DriverID != nil && *b.DriverID == driverID
}

// BookingInput carries a new booking from the public booking flow.
type BookingInput struct {
	Date       string   `json:"date" validate:"required"`
	SessionID  string   `json:"session" validate:"required"`
	Pax        int      `json:"pax" validate:"gt=0"`
	GuestName  string   `json:"guestName" validate:"required,max=255"`
	GuestPhone string   `json:"guestPhone" validate:"max=100"`
	HotelName  string   `json:"hotelName" validate:"max=255"`
	Lat        *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng        *float64 `json:"lng" validate:"omitempty,longitude"`
	PickupTime string   `json:"pickupTime" validate:"omitempty,datetime=15:04"`
}

// PickupUpdate carries admin edits to a stop. Nil fields are left untouched.
type PickupUpdate struct {
	RouteOrder *int     `json:"routeOrder" validate:"omitempty,gte=0"`
	DriverID   *int64   `json:"driverId" validate:"omitempty,gt=0"`
	HotelName  *string  `json:"hotelName" validate:"omitempty,max=255"`
	Lat        *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng        *float64 `json:"lng" validate:"omitempty,longitude"`
	PickupTime *string  `json:"pickupTime" validate:"omitempty,datetime=15:04"`
}
