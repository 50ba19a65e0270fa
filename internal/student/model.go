package student

import (
	"net/http"
	"time"

	"github.com/Sphe667/ViewLab/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "student not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrUsernameTaken      = apperror.New(http.StatusConflict, "username already taken")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "incorrect email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrUsernameRequired   = apperror.New(http.StatusBadRequest, "username is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
)

// Student is a registered user who may hold one active booking.
type Student struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
