package handlers

import (
	"database/sql"

	"pickupcore/internal/events"
	"pickupcore/internal/http/middleware"
	"pickupcore/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers carries the dependencies shared by every endpoint. Services are
// built per request so each one logs with the caller's request id.
type Handlers struct {
	DB         *sql.DB
	Clock      services.Clock
	Publisher  events.Publisher
	Subscriber events.Subscriber
	Auth       services.AuthService
	// PollInterval is the refresh hint, in seconds, returned with stop lists.
	PollInterval int
}

func (h Handlers) availability() services.AvailabilityService {
	return services.AvailabilityService{DB: h.DB, Clock: h.Clock}
}

func (h Handlers) overrides(c *gin.Context) services.OverrideService {
	return services.OverrideService{DB: h.DB, Clock: h.Clock, RequestID: middleware.GetRequestID(c)}
}

func (h Handlers) zones(c *gin.Context) services.ZoneService {
	return services.ZoneService{DB: h.DB, RequestID: middleware.GetRequestID(c)}
}

func (h Handlers) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{DB: h.DB, Clock: h.Clock, RequestID: middleware.GetRequestID(c)}
}

func (h Handlers) dispatch(c *gin.Context) services.DispatchService {
	return services.DispatchService{DB: h.DB, Publisher: h.Publisher, Clock: h.Clock, RequestID: middleware.GetRequestID(c)}
}
