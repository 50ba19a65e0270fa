package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sphe667/ViewLab/internal/lab"
	"github.com/Sphe667/ViewLab/internal/pkg/request"
	"github.com/Sphe667/ViewLab/internal/pkg/response"
)

// AvailabilityLister answers which computers are free right now.
type AvailabilityLister interface {
	ListAvailable(ctx context.Context, labID *int64) ([]*lab.Computer, error)
}

type Handler struct {
	service      lab.Service
	availability AvailabilityLister
}

func NewHandler(service lab.Service, availability AvailabilityLister) *Handler {
	return &Handler{
		service:      service,
		availability: availability,
	}
}

// List returns labs, optionally filtered by a name substring.
func (h *Handler) List(c *gin.Context) {
	var req ListLabsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	labs, total, err := h.service.List(c.Request.Context(), lab.Filter{
		Name:     req.Query,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LabResponse, len(labs))
	for i, l := range labs {
		items[i] = NewLabResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Get returns a lab with every computer and its booking flag.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	l, computers, err := h.service.GetLabDetails(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLabDetailsResponse(l, computers))
}

// Available returns the free computers of one lab.
func (h *Handler) Available(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	computers, err := h.availability.ListAvailable(c.Request.Context(), &uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(NewComputerResponses(computers)))
}
