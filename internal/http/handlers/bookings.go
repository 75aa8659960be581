package handlers

import (
	"net/http"

	"pickupcore/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func (h Handlers) CreateBooking(c *gin.Context) {
	var in models.BookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	b, err := h.bookings(c).CreateBooking(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// POST /api/bookings/:id/cancel
func (h Handlers) CancelBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.bookings(c).CancelBooking(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /api/bookings/:id/pickup
func (h Handlers) UpdatePickup(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in models.PickupUpdate
	if !BindJSONOrError(c, &in) {
		return
	}
	b, err := h.bookings(c).UpdatePickup(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
