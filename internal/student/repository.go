package student

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sphe667/ViewLab/internal/db"
)

// Repository defines methods for accessing student data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Student, error)
	GetByID(ctx context.Context, id int64) (*Student, error)
	Create(ctx context.Context, s *Student) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) get(ctx context.Context, where squirrel.Eq) (*Student, error) {
	sql, args, err := psql.Select("id", "username", "email", "password_hash", "created_at").
		From("students").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get student query failed: %w", err)
	}

	var s Student
	err = db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...).
		Scan(&s.ID, &s.Username, &s.Email, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	return r.get(ctx, squirrel.Eq{"email": email})
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Student, error) {
	return r.get(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) Create(ctx context.Context, s *Student) error {
	sql, args, err := psql.Insert("students").
		Columns("username", "email", "password_hash").
		Values(s.Username, s.Email, s.PasswordHash).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create student query failed: %w", err)
	}

	err = db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if code, constraint, ok := db.ConstraintViolation(err); ok && code == pgerrcode.UniqueViolation {
			switch constraint {
			case "students_email_key":
				return ErrEmailAlreadyUsed
			case "students_username_key":
				return ErrUsernameTaken
			}
		}
		return fmt.Errorf("create student failed: %w", err)
	}
	return nil
}
