package handlers

import (
	"net/http"
	"strconv"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/zones
func (h Handlers) ListZones(c *gin.Context) {
	zones, err := h.zones(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

// PUT /api/zones/:id
func (h Handlers) UpsertZone(c *gin.Context) {
	var in models.ZoneInput
	if !BindJSONOrError(c, &in) {
		return
	}
	z, err := h.zones(c).Upsert(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, z)
}

// GET /api/zones/resolve?lat=&lng=
func (h Handlers) ResolveZone(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "lat", Msg: "must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "lng", Msg: "must be a number"})
		return
	}
	id, ok, err := h.zones(c).Resolve(c.Request.Context(), lat, lng)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var zoneID *string
	if ok {
		zoneID = &id
	}
	c.JSON(http.StatusOK, gin.H{"zoneId": zoneID, "matched": ok})
}
