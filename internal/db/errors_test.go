package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantBusy bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "lock timeout", err: &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, wantBusy: true},
		{name: "serialization", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, wantBusy: true},
		{name: "deadlock wrapped", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), wantBusy: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			assert.Equal(t, tc.wantBusy, errors.Is(got, ErrBusy))
			if tc.err != nil {
				assert.ErrorIs(t, got, tc.err, "wrapped error must stay reachable")
			} else {
				assert.NoError(t, got)
			}
		})
	}
}

func TestConstraintViolation(t *testing.T) {
	code, name, ok := ConstraintViolation(fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "bookings_active_student_key",
	}))
	assert.True(t, ok)
	assert.Equal(t, pgerrcode.UniqueViolation, code)
	assert.Equal(t, "bookings_active_student_key", name)

	_, _, ok = ConstraintViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation})
	assert.False(t, ok)

	_, _, ok = ConstraintViolation(errors.New("boom"))
	assert.False(t, ok)
}
