package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
	"gowheels/internal/logger"
	"gowheels/internal/middleware"
)

// SetupRouter wires every route group onto a new engine.
func SetupRouter(h *controllers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), logger.RequestLogger(), middleware.OptionalAuth())

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	AuthRoutes(api, h)
	UserRoutes(api, h)
	VehicleRoutes(api, h)
	BookingRoutes(api, h)
	PaymentRoutes(api, h)
	SupportRoutes(api, h)
	AdminRoutes(api, h)
	api.GET("/placeholder/:width/:height", h.Placeholder)

	WebSocketRoutes(r, h)

	return r
}
