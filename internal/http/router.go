package api

import (
	"log"
	stdhttp "net/http"

	intconfig "pickupcore/internal/config"
	"pickupcore/internal/domain"
	h "pickupcore/internal/http/handlers"
	"pickupcore/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hs h.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authed := middleware.RequireAuth(hs.Auth.ParseToken)
	admin := middleware.RequireRoles(domain.RoleAdmin)
	staff := middleware.RequireRoles(domain.RoleAdmin, domain.RoleDriver)
	driver := middleware.RequireRoles(domain.RoleDriver)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hs.DBCheck)
		api.GET("/routes", h.Routes)

		api.POST("/auth/login", hs.Login)
		api.POST("/staff", authed, admin, hs.CreateStaff)
		api.GET("/drivers", authed, admin, hs.ListDrivers)

		availability := api.Group("/availability")
		availability.GET("/day", hs.GetDayAvailability)
		availability.GET("/month", hs.GetMonthAvailability)
		availability.GET("/range", hs.GetRangeAvailability)

		overrides := api.Group("/overrides", authed, admin)
		overrides.PUT("", hs.UpsertOverride)
		overrides.DELETE("", hs.ClearOverride)
		overrides.POST("/quick-close", hs.QuickCloseDay)

		zones := api.Group("/zones")
		zones.GET("", hs.ListZones)
		zones.GET("/resolve", hs.ResolveZone)
		zones.PUT("/:id", authed, admin, hs.UpsertZone)

		bookings := api.Group("/bookings")
		bookings.POST("", hs.CreateBooking)
		bookings.POST("/:id/cancel", authed, admin, hs.CancelBooking)
		bookings.PATCH("/:id/pickup", authed, admin, hs.UpdatePickup)

		dispatch := api.Group("/dispatch", authed)
		dispatch.GET("/stops", staff, hs.ListStops)
		dispatch.POST("/bookings/:id/advance", driver, hs.Advance)
		dispatch.POST("/start-route", driver, hs.StartRoute)
		dispatch.POST("/arrive", staff, hs.ArriveDestination)
		dispatch.GET("/route-sheet", staff, hs.RouteSheet)
		dispatch.GET("/feed", staff, hs.DispatchFeed)
	}

	h.SetRouter(r)
	return r
}
