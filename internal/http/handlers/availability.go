package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/availability/day?date=YYYY-MM-DD
func (h Handlers) GetDayAvailability(c *gin.Context) {
	date := c.Query("date")
	day, err := h.availability().GetDayAvailability(c.Request.Context(), date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "sessions": day})
}

// GET /api/availability/month?month=YYYY-MM
func (h Handlers) GetMonthAvailability(c *gin.Context) {
	month := c.Query("month")
	days, err := h.availability().GetMonthAvailability(c.Request.Context(), month)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}

// GET /api/availability/range?from=&to=
func (h Handlers) GetRangeAvailability(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	days, err := h.availability().GetRangeAvailability(c.Request.Context(), from, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "days": days})
}
