package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
	"gowheels/internal/middleware"
	"gowheels/internal/models"
)

func VehicleRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	adminOnly := middleware.RequireAuthWithRole(models.RoleAdmin)

	vehicles := r.Group("/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.GET("/:id/insurance-options", h.ListInsuranceOptions)

		vehicles.POST("", adminOnly, h.CreateVehicle)
		vehicles.PUT("", adminOnly, h.UpdateVehicle)
		vehicles.PUT("/:id", adminOnly, h.UpdateVehicle)
		vehicles.DELETE("", adminOnly, h.DeleteVehicle)
		vehicles.DELETE("/:id", adminOnly, h.DeleteVehicle)
		vehicles.POST("/:id/insurance-options", adminOnly, h.CreateInsuranceOption)
	}

	r.GET("/fleet/map", h.FleetMap)
	r.POST("/quotes", h.Quote)
}
