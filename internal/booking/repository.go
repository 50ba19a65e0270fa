package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sphe667/ViewLab/internal/db"
)

// Constraint names from the schema, used to translate violations.
const (
	constraintActiveStudent  = "bookings_active_student_key"
	constraintActiveComputer = "bookings_active_computer_key"
	constraintStudentFK      = "bookings_student_id_fkey"
	constraintComputerFK     = "bookings_computer_id_fkey"
)

// Repository is the booking ledger. Methods run on the transaction bound to
// ctx when there is one.
type Repository interface {
	FindActiveByStudent(ctx context.Context, studentID int64) (*Booking, error) // nil, nil when none
	FindByID(ctx context.Context, id int64) (*Booking, error)
	// FindByIDForUpdate is FindByID plus a row lock held until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	MarkCancelled(ctx context.Context, id int64, at time.Time) error
	ListByStudent(ctx context.Context, studentID int64, filter Filter) ([]*Booking, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.student_id", "b.computer_id", "b.booking_time", "b.active", "b.cancelled_at",
		"c.number", "l.id", "l.name",
	).
		From("bookings b").
		Join("computers c ON c.id = b.computer_id").
		Join("labs l ON l.id = c.lab_id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.StudentID, &b.ComputerID, &b.BookingTime, &b.Active, &b.CancelledAt,
		&b.ComputerNumber, &b.LabID, &b.LabName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) FindActiveByStudent(ctx context.Context, studentID int64) (*Booking, error) {
	sql, args, err := selectBookings().
		Where(squirrel.Eq{"b.student_id": studentID, "b.active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find active booking query failed: %w", err)
	}

	b, err := scanBooking(db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) FindByID(ctx context.Context, id int64) (*Booking, error) {
	return r.findByID(ctx, id, "")
}

func (r *pgxRepository) FindByIDForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return r.findByID(ctx, id, "FOR UPDATE OF b")
}

func (r *pgxRepository) findByID(ctx context.Context, id int64, lock string) (*Booking, error) {
	query := selectBookings().Where(squirrel.Eq{"b.id": id})
	if lock != "" {
		query = query.Suffix(lock)
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) Insert(ctx context.Context, b *Booking) error {
	sql, args, err := psql.Insert("bookings").
		Columns("student_id", "computer_id", "booking_time", "active").
		Values(b.StudentID, b.ComputerID, b.BookingTime, true).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&b.ID); err != nil {
		if _, constraint, ok := db.ConstraintViolation(err); ok {
			switch constraint {
			case constraintActiveStudent:
				return ErrAlreadyBooked
			case constraintActiveComputer:
				return ErrComputerUnavailable
			case constraintComputerFK:
				return ErrComputerNotFound
			case constraintStudentFK:
				return ErrNotAuthenticated
			}
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	b.Active = true
	b.CancelledAt = nil
	return nil
}

func (r *pgxRepository) MarkCancelled(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := psql.Update("bookings").
		Set("active", false).
		Set("cancelled_at", at).
		Where(squirrel.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel booking query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("cancel booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyCancelled
	}
	return nil
}

func (r *pgxRepository) ListByStudent(ctx context.Context, studentID int64, filter Filter) ([]*Booking, int, error) {
	query := selectBookings().
		Column("count(*) OVER() AS total_count").
		Where(squirrel.Eq{"b.student_id": studentID})

	if filter.Active != nil {
		query = query.Where(squirrel.Eq{"b.active": *filter.Active})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.
		OrderBy("b.booking_time DESC", "b.id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}

