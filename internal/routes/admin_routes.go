package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
	"gowheels/internal/middleware"
	"gowheels/internal/models"
)

func AdminRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole(models.RoleAdmin))
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id/status", h.SetUserStatus)
		admin.GET("/settings", h.ListSettings)
		admin.GET("/settings/:key", h.GetSetting)
		admin.PUT("/settings/:key", h.PutSetting)
	}
}
