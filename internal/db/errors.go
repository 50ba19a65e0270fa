package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrBusy marks a transaction that lost a lock or serialization race.
// It is safe to retry the whole transaction.
var ErrBusy = errors.New("database busy")

// Classify rewrites transient Postgres conflicts as ErrBusy and leaves every
// other error untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable,
			pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected:
			return fmt.Errorf("%w: %w", ErrBusy, err)
		}
	}
	return err
}

// ConstraintViolation reports the constraint name when err is a unique or
// foreign key violation.
func ConstraintViolation(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}
