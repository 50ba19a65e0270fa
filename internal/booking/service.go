package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Sphe667/ViewLab/internal/db"
	"github.com/Sphe667/ViewLab/internal/lab"
)

// Inventory is the part of the lab store the reservation flow needs.
type Inventory interface {
	GetLab(ctx context.Context, id int64) (*lab.Lab, error)
	GetComputer(ctx context.Context, id int64) (*lab.Computer, error)
	ListAvailableComputers(ctx context.Context, labID *int64) ([]*lab.Computer, error)
	SetBooked(ctx context.Context, computerID int64, booked bool) error
}

// Service is the reservation core. Every method takes the caller's student
// id explicitly; the service never looks up a session on its own.
type Service interface {
	Book(ctx context.Context, studentID, computerID int64) (*Booking, error)
	Cancel(ctx context.Context, studentID, bookingID int64) error
	GetByID(ctx context.Context, studentID, bookingID int64) (*Booking, error)
	ActiveBooking(ctx context.Context, studentID int64) (*Booking, error)
	ListAvailable(ctx context.Context, labID *int64) ([]*lab.Computer, error)
	ListUserBookings(ctx context.Context, studentID int64, filter Filter) ([]*Booking, int, error)
}

type service struct {
	repo      Repository
	inventory Inventory
	tx        db.TxRunner
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, inventory Inventory, tx db.TxRunner, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		inventory: inventory,
		tx:        tx,
		logger:    logger,
		now:       time.Now,
	}
}

// Book reserves computerID for studentID.
//
// The checks and both writes share one transaction. The is_booked
// compare-and-swap serializes racing callers on the computer row, and the
// partial unique indexes reject a second active booking per student or
// computer even if two transactions pass the reads at once.
func (s *service) Book(ctx context.Context, studentID, computerID int64) (*Booking, error) {
	if studentID <= 0 {
		return nil, ErrNotAuthenticated
	}

	var created *Booking
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		// 1. One active booking per student, across all labs
		active, err := s.repo.FindActiveByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrAlreadyBooked
		}

		// 2. Computer must exist and be free
		comp, err := s.inventory.GetComputer(ctx, computerID)
		if err != nil {
			if errors.Is(err, lab.ErrComputerNotFound) {
				return ErrComputerNotFound
			}
			return err
		}
		if comp.IsBooked {
			return ErrComputerUnavailable
		}

		// 3. Claim the computer, then record the booking
		if err := s.inventory.SetBooked(ctx, computerID, true); err != nil {
			switch {
			case errors.Is(err, lab.ErrComputerUnavailable):
				return ErrComputerUnavailable
			case errors.Is(err, lab.ErrComputerNotFound):
				return ErrComputerNotFound
			default:
				return err
			}
		}

		b := &Booking{
			StudentID:      studentID,
			ComputerID:     computerID,
			BookingTime:    s.now().UTC().Truncate(time.Microsecond),
			ComputerNumber: comp.Number,
			LabID:          comp.LabID,
			LabName:        comp.LabName,
		}
		if err := s.repo.Insert(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, s.fail("book", err, zap.Int64("student_id", studentID), zap.Int64("computer_id", computerID))
	}

	s.logger.Info("computer booked",
		zap.Int64("booking_id", created.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("computer_id", computerID),
		zap.String("lab", created.LabName))
	return created, nil
}

// Cancel ends studentID's active booking and frees its computer.
// The booking row is locked first so concurrent cancels run one at a time.
func (s *service) Cancel(ctx context.Context, studentID, bookingID int64) error {
	if studentID <= 0 {
		return ErrNotAuthenticated
	}

	var computerID int64
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.StudentID != studentID {
			return ErrNotOwner
		}
		if !b.Active {
			return ErrAlreadyCancelled
		}

		if err := s.repo.MarkCancelled(ctx, b.ID, s.now().UTC().Truncate(time.Microsecond)); err != nil {
			return err
		}
		if err := s.inventory.SetBooked(ctx, b.ComputerID, false); err != nil {
			return err
		}
		computerID = b.ComputerID
		return nil
	})
	if err != nil {
		return s.fail("cancel", err, zap.Int64("student_id", studentID), zap.Int64("booking_id", bookingID))
	}

	s.logger.Info("booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("student_id", studentID),
		zap.Int64("computer_id", computerID))
	return nil
}

// GetByID returns one of the student's own bookings.
func (s *service) GetByID(ctx context.Context, studentID, bookingID int64) (*Booking, error) {
	if studentID <= 0 {
		return nil, ErrNotAuthenticated
	}
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentID != studentID {
		return nil, ErrNotOwner
	}
	return b, nil
}

// ActiveBooking returns the student's current booking, or nil.
func (s *service) ActiveBooking(ctx context.Context, studentID int64) (*Booking, error) {
	if studentID <= 0 {
		return nil, ErrNotAuthenticated
	}
	return s.repo.FindActiveByStudent(ctx, studentID)
}

// ListAvailable is a plain snapshot read; it takes no locks.
func (s *service) ListAvailable(ctx context.Context, labID *int64) ([]*lab.Computer, error) {
	if labID != nil {
		if _, err := s.inventory.GetLab(ctx, *labID); err != nil {
			return nil, err
		}
	}
	return s.inventory.ListAvailableComputers(ctx, labID)
}

// ListUserBookings returns active and past bookings, newest first.
func (s *service) ListUserBookings(ctx context.Context, studentID int64, filter Filter) ([]*Booking, int, error) {
	if studentID <= 0 {
		return nil, 0, ErrNotAuthenticated
	}
	return s.repo.ListByStudent(ctx, studentID, filter)
}

// fail maps a transaction error to what the caller sees. Conflicts that
// outlasted the retry budget become ErrBusy.
func (s *service) fail(op string, err error, fields ...zap.Field) error {
	if errors.Is(err, db.ErrBusy) {
		s.logger.Warn(op+" gave up after retries", append(fields, zap.Error(err))...)
		return ErrBusy
	}
	return err
}
