package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
)

func SupportRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	support := r.Group("/support")
	{
		support.GET("/conversations", h.ListConversations)
		support.POST("/conversations", h.CreateConversation)
		support.GET("/conversations/:id", h.GetConversation)
		support.PUT("/conversations/:id", h.UpdateConversation)
		support.POST("/conversations/:id/chat", h.Chat)

		support.GET("/messages", h.ListMessages)
		support.POST("/messages", h.CreateMessage)
	}
}
