// Command seed creates the configured labs and computers. Running it again
// only adds what is missing.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Sphe667/ViewLab/internal/config"
	"github.com/Sphe667/ViewLab/internal/db"
	"github.com/Sphe667/ViewLab/internal/lab"
	"github.com/Sphe667/ViewLab/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	file := flag.String("file", cfg.LabsFile, "YAML file listing labs and their computer counts")
	flag.Parse()

	zl, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		zl.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		zl.Fatal("failed to migrate schema", zap.Error(err))
	}

	seeds, err := lab.LoadSeeds(*file)
	if err != nil {
		zl.Fatal("failed to load lab seeds", zap.String("file", *file), zap.Error(err))
	}

	tx := db.NewRunner(pool, db.RunnerConfig{
		LockTimeout: cfg.DBLockTimeout,
		MaxAttempts: cfg.DBTxMaxAttempts,
		Backoff:     50 * time.Millisecond,
	}, zl)
	svc := lab.NewService(lab.NewPgxRepository(pool), tx, zl.Named("lab"))

	res, err := svc.Provision(ctx, seeds)
	if err != nil {
		zl.Fatal("provisioning failed", zap.Error(err))
	}
	zl.Info("provisioning complete",
		zap.Int("labs_created", res.LabsCreated),
		zap.Int("computers_added", res.ComputersAdded))
}
