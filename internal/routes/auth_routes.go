package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
)

func AuthRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", h.Me)
	}
}

func UserRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	users := r.Group("/users")
	{
		users.PUT("/profile", h.UpdateProfile)
	}
}
