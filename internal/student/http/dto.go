package http

import (
	"strings"
	"time"

	bookingHttp "github.com/Sphe667/ViewLab/internal/booking/http"
	"github.com/Sphe667/ViewLab/internal/student"
)

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=50"`
	Email           string `json:"email" binding:"required,email,max=100"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// Validate performs custom validation for RegisterRequest.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return student.ErrUsernameRequired
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type StudentResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewStudentResponse(s *student.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Username:  s.Username,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
	}
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Student     StudentResponse `json:"student"`
}

// MeResponse is the profile view: the student plus their current booking.
type MeResponse struct {
	Student       StudentResponse              `json:"student"`
	ActiveBooking *bookingHttp.BookingResponse `json:"active_booking"`
}
