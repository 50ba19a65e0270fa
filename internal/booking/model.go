package booking

import (
	"net/http"
	"time"

	"github.com/Sphe667/ViewLab/internal/pkg/apperror"
)

var (
	ErrNotAuthenticated    = apperror.New(http.StatusUnauthorized, "you must be logged in to book a computer")
	ErrAlreadyBooked       = apperror.New(http.StatusConflict, "you already have an active booking")
	ErrComputerNotFound    = apperror.New(http.StatusNotFound, "computer not found")
	ErrComputerUnavailable = apperror.New(http.StatusConflict, "computer is already booked")
	ErrNotFound            = apperror.New(http.StatusNotFound, "booking not found")
	ErrNotOwner            = apperror.New(http.StatusForbidden, "you are not authorized to cancel this booking")
	ErrAlreadyCancelled    = apperror.New(http.StatusConflict, "booking is already cancelled")
	ErrBusy                = apperror.New(http.StatusServiceUnavailable, "booking system is busy, please retry")
)

// Booking links one student to one computer from BookingTime until cancelled.
// StudentID and ComputerID never change after insert.
type Booking struct {
	ID          int64
	StudentID   int64
	ComputerID  int64
	BookingTime time.Time
	Active      bool
	CancelledAt *time.Time

	// Read-side details joined from the inventory.
	ComputerNumber int
	LabID          int64
	LabName        string
}

type Filter struct {
	Active   *bool // nil lists active and cancelled bookings
	Page     int
	PageSize int
}
