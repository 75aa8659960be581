package handlers

import (
	"net/http"

	"pickupcore/internal/domain"
	"pickupcore/internal/http/middleware"
	"pickupcore/internal/services"

	"github.com/gin-gonic/gin"
)

type advanceRequest struct {
	ExpectedFrom string `json:"expected_from"`
}

type slotRequest struct {
	Date    string `json:"date"`
	Session string `json:"session"`
	// DriverID is honoured for admins only.
	DriverID *int64 `json:"driver_id"`
}

// driverIdentity is the driver acting on a stop; it always comes from the token.
func driverIdentity(c *gin.Context) (int64, bool) {
	rc, _ := middleware.GetRequestContext(c)
	if rc.DriverID <= 0 {
		respondError(c, http.StatusForbidden, "forbidden", "akun tidak terhubung ke driver", nil)
		return 0, false
	}
	return rc.DriverID, true
}

// GET /api/dispatch/stops?date=&session=&driver_id=
func (h Handlers) ListStops(c *gin.Context) {
	driverID, ok := scopeDriver(c, c.Query("driver_id"))
	if !ok {
		return
	}
	stops, err := h.dispatch(c).ListStops(c.Request.Context(), c.Query("date"), c.Query("session"), driverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":                  c.Query("date"),
		"session":               c.Query("session"),
		"stops":                 stops,
		"refresh_after_seconds": h.PollInterval,
	})
}

// POST /api/dispatch/bookings/:id/advance
func (h Handlers) Advance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	driverID, ok := driverIdentity(c)
	if !ok {
		return
	}
	var req advanceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	expected, err := domain.ParseTransportStatus(req.ExpectedFrom)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.dispatch(c).Advance(c.Request.Context(), id, driverID, expected)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/dispatch/start-route
func (h Handlers) StartRoute(c *gin.Context) {
	driverID, ok := driverIdentity(c)
	if !ok {
		return
	}
	var req slotRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.dispatch(c).StartRoute(c.Request.Context(), req.Date, req.Session, driverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/dispatch/arrive
func (h Handlers) ArriveDestination(c *gin.Context) {
	var req slotRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	requested := ""
	if req.DriverID != nil {
		requested = itoa(*req.DriverID)
	}
	driverID, ok := scopeDriver(c, requested)
	if !ok {
		return
	}
	n, err := h.dispatch(c).ArriveDestination(c.Request.Context(), req.Date, req.Session, driverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": req.Date, "session": req.Session, "dropped_off": n})
}

// GET /api/dispatch/route-sheet?date=&session=&driver_id=
func (h Handlers) RouteSheet(c *gin.Context) {
	driverID, ok := scopeDriver(c, c.Query("driver_id"))
	if !ok {
		return
	}
	svc := services.RouteSheetService{DB: h.DB}
	pdfBytes, filename, err := svc.Generate(c.Request.Context(), c.Query("date"), c.Query("session"), driverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
