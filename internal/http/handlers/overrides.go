package handlers

import (
	"net/http"

	"pickupcore/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type overrideRequest struct {
	Date    string `json:"date"`
	Session string `json:"session"`
	models.OverrideInput
}

type quickCloseRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// PUT /api/overrides
func (h Handlers) UpsertOverride(c *gin.Context) {
	var req overrideRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ov, err := h.overrides(c).UpsertOverride(c.Request.Context(), req.Date, req.Session, req.OverrideInput)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// DELETE /api/overrides?date=&session=
func (h Handlers) ClearOverride(c *gin.Context) {
	if err := h.overrides(c).ClearOverride(c.Request.Context(), c.Query("date"), c.Query("session")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/overrides/quick-close
func (h Handlers) QuickCloseDay(c *gin.Context) {
	var req quickCloseRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := h.overrides(c).QuickCloseDay(c.Request.Context(), req.Date, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": req.Date, "overrides": out})
}
