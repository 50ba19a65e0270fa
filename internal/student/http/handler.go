package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sphe667/ViewLab/internal/auth"
	"github.com/Sphe667/ViewLab/internal/booking"
	bookingHttp "github.com/Sphe667/ViewLab/internal/booking/http"
	"github.com/Sphe667/ViewLab/internal/pkg/response"
	"github.com/Sphe667/ViewLab/internal/student"
)

// ActiveBookingFinder looks up a student's current booking for the profile view.
type ActiveBookingFinder interface {
	ActiveBooking(ctx context.Context, studentID int64) (*booking.Booking, error)
}

type Handler struct {
	service    student.Service
	bookings   ActiveBookingFinder
	jwtManager *auth.JWTManager
}

func NewHandler(service student.Service, bookings ActiveBookingFinder, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		service:    service,
		bookings:   bookings,
		jwtManager: jwtManager,
	}
}

// Register creates a student account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	s, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewStudentResponse(s))
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	s, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(s.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		Student:     NewStudentResponse(s),
	})
}

// Me returns the caller's profile and active booking, if any.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := auth.GetStudentID(c)

	s, err := h.service.GetByID(ctx, studentID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "student not found"})
		return
	}

	resp := MeResponse{Student: NewStudentResponse(s)}

	active, err := h.bookings.ActiveBooking(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if active != nil {
		br := bookingHttp.NewBookingResponse(active)
		resp.ActiveBooking = &br
	}

	c.JSON(http.StatusOK, resp)
}
