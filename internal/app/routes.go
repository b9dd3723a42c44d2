package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API under group. POST /refresh goes through auth.
func RegisterRoutes(group *gin.RouterGroup, h *Handler, auth *Auth) {
	group.GET("/health", h.Health)

	group.GET("/sensors", h.ListSensors)
	group.GET("/sensors/:category", h.GetSensor)

	group.GET("/calendars/:category", h.GetNextEvent)
	group.GET("/calendars/:category/events", h.GetEvents)

	group.GET("/schedule", h.GetSchedule)
	group.GET("/download", h.Download)
	group.GET("/subscribe/:category", h.Subscribe)

	group.POST("/refresh", auth.RequireAuth(), h.Refresh)
}

// NewRouter builds the engine with the API under /api and Prometheus metrics
// under /metrics.
func NewRouter(h *Handler, auth *Auth) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID())

	RegisterRoutes(router.Group("/api"), h, auth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
