// Package dbtest connects tests to a real Postgres. Each caller gets its own
// schema so packages tested in parallel do not truncate each other's rows.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/Sphe667/ViewLab/internal/db"
)

// Open returns a migrated pool scoped to schema, or skips the test when
// TEST_DB_DSN is not set.
func Open(t *testing.T, schema string) *pgxpool.Pool {
	t.Helper()

	// Attempt to load .env from the repository root
	_ = godotenv.Load("../../.env", "../../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	schema = pgx.Identifier{"test_" + schema}.Sanitize()

	admin, err := db.NewPool(ctx, dsn, db.PoolOptions{MaxConns: 2})
	require.NoError(t, err)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	admin.Close()
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	cfg.MaxConns = 32

	pool, err := db.NewPoolWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	Reset(t, pool)
	return pool
}

// Reset empties every table and restarts id sequences.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE bookings, computers, labs, students RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
