package lab

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sphe667/ViewLab/internal/db"
)

type Service interface {
	// GetLabDetails returns the lab and all of its computers.
	GetLabDetails(ctx context.Context, labID int64) (*Lab, []*Computer, error)
	List(ctx context.Context, filter Filter) ([]*Lab, int, error)
	// Provision creates missing labs and tops up their computers. It never deletes.
	Provision(ctx context.Context, seeds []SeedLab) (ProvisionResult, error)
}

type service struct {
	repo   Repository
	tx     db.TxRunner
	logger *zap.Logger
}

func NewService(repo Repository, tx db.TxRunner, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		tx:     tx,
		logger: logger,
	}
}

func (s *service) GetLabDetails(ctx context.Context, labID int64) (*Lab, []*Computer, error) {
	l, err := s.repo.GetLab(ctx, labID)
	if err != nil {
		return nil, nil, err
	}
	computers, err := s.repo.ListComputers(ctx, labID)
	if err != nil {
		return nil, nil, err
	}
	return l, computers, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Lab, int, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	return s.repo.ListLabs(ctx, filter)
}

func (s *service) Provision(ctx context.Context, seeds []SeedLab) (ProvisionResult, error) {
	var result ProvisionResult

	if err := ValidateSeeds(seeds); err != nil {
		return result, err
	}

	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)

		var created bool
		var added int
		err := s.tx.InTx(ctx, func(ctx context.Context) error {
			id, isNew, err := s.repo.EnsureLab(ctx, name)
			if err != nil {
				return err
			}
			n, err := s.repo.AddComputers(ctx, id, seed.Computers)
			if err != nil {
				return err
			}
			created, added = isNew, n
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("provision lab %q failed: %w", name, err)
		}

		if created {
			result.LabsCreated++
		}
		result.ComputersAdded += added

		s.logger.Info("lab provisioned",
			zap.String("lab", name),
			zap.Bool("created", created),
			zap.Int("computers_added", added))
	}

	return result, nil
}

// ValidateSeeds rejects blank names, duplicate names and non-positive counts.
func ValidateSeeds(seeds []SeedLab) error {
	seen := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return ErrEmptyName
		}
		if seed.Computers < 1 {
			return fmt.Errorf("lab %q: %w", name, ErrInvalidComputerCount)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("lab %q is listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
