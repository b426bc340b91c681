package routes

import (
	"github.com/gin-gonic/gin"

	"gowheels/internal/controllers"
	"gowheels/internal/middleware"
	"gowheels/internal/models"
)

func BookingRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.CancelBooking)
	}
}

func PaymentRoutes(r *gin.RouterGroup, h *controllers.Handler) {
	adminOnly := middleware.RequireAuthWithRole(models.RoleAdmin)

	payments := r.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
		payments.POST("/orders", h.CreateOrder)
		payments.PUT("", h.UpdatePayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.POST("/:id/capture", h.CapturePayment)
		payments.DELETE("", adminOnly, h.DeletePayment)
		payments.DELETE("/:id", adminOnly, h.DeletePayment)
	}
}
