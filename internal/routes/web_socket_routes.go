package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
)

// WebSocketRoutes authenticates with ?token= since browsers cannot set
// headers on the upgrade request.
func WebSocketRoutes(r *gin.Engine, h *controllers.Handler) {
	ws := r.Group("/ws")
	{
		ws.GET("/support/:id", h.SupportSocket)
	}
}
