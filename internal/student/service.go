package student

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sphe667/ViewLab/internal/auth"
)

// Service registers students and verifies their credentials. It is the
// identity source for the booking core, not part of it.
type Service interface {
	Register(ctx context.Context, username, email, password string) (*Student, error)
	Login(ctx context.Context, email, password string) (*Student, error)
	GetByID(ctx context.Context, id int64) (*Student, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher

	minPasswordLength int
}

// NewService creates a new student Service.
func NewService(repo Repository, hasher auth.PasswordHasher) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		minPasswordLength: 8,
	}
}

func (s *service) Register(ctx context.Context, username, email, password string) (*Student, error) {
	cleanUsername := strings.TrimSpace(username)
	if cleanUsername == "" {
		return nil, ErrUsernameRequired
	}

	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}

	if len(password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	st := &Student{
		Username:     cleanUsername,
		Email:        cleanEmail,
		PasswordHash: hash,
	}

	// Uniqueness is left to the database constraints; Create maps violations.
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Student, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	st, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch student by email: %w", err)
	}

	if err := s.hasher.Compare(st.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return st, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Student, error) {
	return s.repo.GetByID(ctx, id)
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
