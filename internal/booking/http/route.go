package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the reservation endpoints. Only the availability
// view is public; everything under /bookings acts for the token's student.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/computers/available", h.Available) // ?lab_id= narrows to one lab

	bookings := g.Group("/bookings", authMiddleware)
	bookings.GET("", h.List)               // Own bookings, newest first
	bookings.POST("", h.Create)            // Book a computer
	bookings.GET("/:id", h.Get)            // One own booking
	bookings.POST("/:id/cancel", h.Cancel) // Cancel an own booking
}
