package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// Conn returns the transaction bound to ctx by InTx, or pool outside one.
// Repositories call it so the same method works in and out of a transaction.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// RunnerConfig tunes lock waits and retries.
type RunnerConfig struct {
	LockTimeout time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// Runner is the pgx implementation of TxRunner.
type Runner struct {
	pool   *pgxpool.Pool
	cfg    RunnerConfig
	logger *zap.Logger
}

// NewRunner creates a Runner. MaxAttempts below 1 means a single attempt.
func NewRunner(pool *pgxpool.Pool, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 20 * time.Millisecond
	}
	return &Runner{pool: pool, cfg: cfg, logger: logger}
}

// InTx runs fn in a READ COMMITTED transaction, committing when fn returns nil.
// Transient conflicts (ErrBusy) restart the whole transaction up to
// MaxAttempts times. A call nested inside another InTx joins the outer
// transaction.
func (r *Runner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return retry(ctx, r.cfg.MaxAttempts, r.cfg.Backoff, func(attempt int) error {
		err := r.runOnce(ctx, fn)
		if errors.Is(err, ErrBusy) {
			r.logger.Warn("transaction conflict",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.cfg.MaxAttempts),
				zap.Error(err))
		}
		return err
	})
}

func (r *Runner) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if r.cfg.LockTimeout > 0 {
			// SET does not accept bind parameters.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.cfg.LockTimeout.Milliseconds())
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("set lock timeout failed: %w", err)
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return Classify(err)
}

// retry calls fn until it succeeds, fails with a non-ErrBusy error, the
// attempts run out, or ctx is done.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(attempt)
		if err == nil || !errors.Is(err, ErrBusy) || attempt == attempts {
			return err
		}

		// Linear backoff with jitter so colliding callers spread out.
		wait := time.Duration(attempt) * backoff
		if backoff > 0 {
			wait += rand.N(backoff)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}
