package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sphe667/ViewLab/internal/auth"
	"github.com/Sphe667/ViewLab/internal/booking"
	"github.com/Sphe667/ViewLab/internal/lab"
	labHttp "github.com/Sphe667/ViewLab/internal/lab/http"
	"github.com/Sphe667/ViewLab/internal/pkg/response"
)

// stubService answers every call with the configured values and records
// the identity it was called with.
type stubService struct {
	booking   *booking.Booking
	bookings  []*booking.Booking
	computers []*lab.Computer
	err       error

	gotStudent int64
	gotFilter  booking.Filter
	gotLab     *int64
}

func (s *stubService) Book(_ context.Context, studentID, computerID int64) (*booking.Booking, error) {
	s.gotStudent = studentID
	return s.booking, s.err
}

func (s *stubService) Cancel(_ context.Context, studentID, bookingID int64) error {
	s.gotStudent = studentID
	return s.err
}

func (s *stubService) GetByID(_ context.Context, studentID, bookingID int64) (*booking.Booking, error) {
	s.gotStudent = studentID
	return s.booking, s.err
}

func (s *stubService) ActiveBooking(_ context.Context, studentID int64) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) ListAvailable(_ context.Context, labID *int64) ([]*lab.Computer, error) {
	s.gotLab = labID
	return s.computers, s.err
}

func (s *stubService) ListUserBookings(_ context.Context, studentID int64, filter booking.Filter) ([]*booking.Booking, int, error) {
	s.gotStudent = studentID
	s.gotFilter = filter
	return s.bookings, len(s.bookings), s.err
}

const testStudent int64 = 7

func setup(t *testing.T, svc *stubService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := auth.NewJWTManager("test-secret", time.Minute)
	token, err := jwtManager.GenerateAccessToken(testStudent)
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwtManager))
	return r, token
}

func do(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:             11,
		StudentID:      testStudent,
		ComputerID:     3,
		BookingTime:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Active:         true,
		ComputerNumber: 3,
		LabID:          1,
		LabName:        "Lab 120",
	}
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &stubService{booking: sampleBooking()}
		r, token := setup(t, svc)

		w := do(r, http.MethodPost, "/v1/bookings", CreateBookingBody{ComputerID: 3}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, testStudent, svc.gotStudent)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(11), resp.ID)
		assert.Equal(t, 3, resp.Computer.Number)
		assert.Equal(t, "Lab 120", resp.Lab.Name)
		assert.True(t, resp.Active)
		assert.Nil(t, resp.CancelledAt)
	})

	t.Run("Requires Token", func(t *testing.T) {
		r, _ := setup(t, &stubService{})
		w := do(r, http.MethodPost, "/v1/bookings", CreateBookingBody{ComputerID: 3}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Rejects Bad Body", func(t *testing.T) {
		r, token := setup(t, &stubService{})
		w := do(r, http.MethodPost, "/v1/bookings", map[string]any{"computer_id": 0}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tests := []struct {
		err     error
		code    int
		message string
	}{
		{booking.ErrAlreadyBooked, http.StatusConflict, "you already have an active booking"},
		{booking.ErrComputerUnavailable, http.StatusConflict, "computer is already booked"},
		{booking.ErrComputerNotFound, http.StatusNotFound, "computer not found"},
		{booking.ErrNotAuthenticated, http.StatusUnauthorized, "you must be logged in to book a computer"},
		{booking.ErrBusy, http.StatusServiceUnavailable, "booking system is busy, please retry"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r, token := setup(t, &stubService{err: tt.err})
			w := do(r, http.MethodPost, "/v1/bookings", CreateBookingBody{ComputerID: 3}, token)
			assert.Equal(t, tt.code, w.Code)

			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"Success", "/v1/bookings/11/cancel", nil, http.StatusNoContent},
		{"Not Owner", "/v1/bookings/11/cancel", booking.ErrNotOwner, http.StatusForbidden},
		{"Already Cancelled", "/v1/bookings/11/cancel", booking.ErrAlreadyCancelled, http.StatusConflict},
		{"Unknown", "/v1/bookings/11/cancel", booking.ErrNotFound, http.StatusNotFound},
		{"Bad ID", "/v1/bookings/abc/cancel", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			r, token := setup(t, svc)
			w := do(r, http.MethodPost, tt.path, nil, token)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestList(t *testing.T) {
	svc := &stubService{bookings: []*booking.Booking{sampleBooking()}}
	r, token := setup(t, svc)

	w := do(r, http.MethodGet, "/v1/bookings?active=true&page=2&page_size=5", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, svc.gotFilter.Active)
	assert.True(t, *svc.gotFilter.Active)
	assert.Equal(t, 2, svc.gotFilter.Page)
	assert.Equal(t, 5, svc.gotFilter.PageSize)

	var resp response.PageResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(11), resp.Items[0].ID)
}

func TestAvailable(t *testing.T) {
	t.Run("Public With Lab Filter", func(t *testing.T) {
		svc := &stubService{computers: []*lab.Computer{{ID: 4, LabID: 2, LabName: "Lab L44", Number: 1}}}
		r, _ := setup(t, svc)

		w := do(r, http.MethodGet, "/v1/computers/available?lab_id=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.gotLab)
		assert.Equal(t, int64(2), *svc.gotLab)

		var resp response.ListResponse[labHttp.ComputerResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Lab L44", resp.Items[0].Lab.Name)
		assert.False(t, resp.Items[0].IsBooked)
	})

	t.Run("Empty List Is Not Null", func(t *testing.T) {
		r, _ := setup(t, &stubService{})
		w := do(r, http.MethodGet, "/v1/computers/available", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
	})

	t.Run("Unknown Lab", func(t *testing.T) {
		r, _ := setup(t, &stubService{err: lab.ErrNotFound})
		w := do(r, http.MethodGet, "/v1/computers/available?lab_id=99", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad Lab ID", func(t *testing.T) {
		r, _ := setup(t, &stubService{})
		w := do(r, http.MethodGet, "/v1/computers/available?lab_id=abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
