package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers lab routes. They are public; listCache, when
// non-nil, wraps only the topology listing.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, listCache gin.HandlerFunc) {
	group := g.Group("/labs")

	list := []gin.HandlerFunc{h.List}
	if listCache != nil {
		list = append([]gin.HandlerFunc{listCache}, list...)
	}

	group.GET("", list...)                   // List labs
	group.GET("/:id", h.Get)                 // Lab details with computers
	group.GET("/:id/available", h.Available) // Free computers in a lab
}
