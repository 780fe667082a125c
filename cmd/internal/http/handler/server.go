package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/utils/uid"
)

// NewServer wires the read-mostly JSON API over the lead store.
func NewServer(leads LeadService, cache CacheService, logger logging.Logger) *echo.Echo {
	leadRoutes := NewLeadRoute(leads)
	cacheRoutes := NewCacheRoute(cache)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uid.MustNew(0).String}))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debugf("[%s] %s %s -> %d", v.RequestID, v.Method, v.URI, v.Status)
			return nil
		},
	}))

	// Leads
	e.GET("/api/leads", leadRoutes.GetLeads)
	e.GET("/api/leads/:id", leadRoutes.GetLead)
	e.PATCH("/api/leads/:id", leadRoutes.PatchLead)
	e.POST("/api/leads/:id/rescore", leadRoutes.RescoreLead)
	e.GET("/api/stats", leadRoutes.GetStats)

	// Cache
	e.DELETE("/api/cache", cacheRoutes.ClearCache)
	e.DELETE("/api/cache/*", cacheRoutes.ClearCache)

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)
	return e
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
