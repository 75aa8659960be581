package handlers

import (
	"net/http"

	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"

	"github.com/gin-gonic/gin"
)

// POST /api/staff
func (h Handlers) CreateStaff(c *gin.Context) {
	var in models.StaffInput
	if !BindJSONOrError(c, &in) {
		return
	}
	auth := h.Auth
	if auth.DB == nil {
		auth.DB = h.DB
	}
	acct, err := auth.CreateStaff(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

// GET /api/drivers
func (h Handlers) ListDrivers(c *gin.Context) {
	drivers, err := repositories.DriverRepository{DB: h.DB}.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}
