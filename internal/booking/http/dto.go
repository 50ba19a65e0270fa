package http

import (
	"time"

	"github.com/Sphe667/ViewLab/internal/booking"
	labHttp "github.com/Sphe667/ViewLab/internal/lab/http"
	"github.com/Sphe667/ViewLab/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing the caller's bookings.
type ListBookingsRequest struct {
	request.ListParams
	Active *bool `form:"active"`
}

// ListAvailableRequest filters free computers by lab.
type ListAvailableRequest struct {
	LabID *int64 `form:"lab_id" binding:"omitempty,min=1"`
}

type CreateBookingBody struct {
	ComputerID int64 `json:"computer_id" binding:"required,min=1"`
}

type ComputerTag struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}

type BookingResponse struct {
	ID          int64          `json:"id"`
	StudentID   int64          `json:"student_id"`
	Computer    ComputerTag    `json:"computer"`
	Lab         labHttp.LabTag `json:"lab"`
	BookingTime time.Time      `json:"booking_time"`
	Active      bool           `json:"active"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		StudentID:   b.StudentID,
		Computer:    ComputerTag{ID: b.ComputerID, Number: b.ComputerNumber},
		Lab:         labHttp.LabTag{ID: b.LabID, Name: b.LabName},
		BookingTime: b.BookingTime,
		Active:      b.Active,
		CancelledAt: b.CancelledAt,
	}
}
