package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/viewlab")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 2*time.Second, cfg.DBLockTimeout)
	assert.Equal(t, 3, cfg.DBTxMaxAttempts)
	assert.Equal(t, 10.0, cfg.RateLimitPerSec)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, "config/labs.yaml", cfg.LabsFile)
	assert.False(t, cfg.SeedOnStart)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/viewlab")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_LOCK_TIMEOUT", "500ms")
	t.Setenv("DB_TX_MAX_ATTEMPTS", "5")
	t.Setenv("SEED_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, 500*time.Millisecond, cfg.DBLockTimeout)
	assert.Equal(t, 5, cfg.DBTxMaxAttempts)
	assert.True(t, cfg.SeedOnStart)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing DSN", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DSN")
	})

	t.Run("bad integer", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/viewlab")
		t.Setenv("BCRYPT_COST", "twelve")
		_, err := Load()
		assert.ErrorContains(t, err, "BCRYPT_COST")
	})

	t.Run("zero attempts", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/viewlab")
		t.Setenv("DB_TX_MAX_ATTEMPTS", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_TX_MAX_ATTEMPTS")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/viewlab")
		t.Setenv("DB_LOCK_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_LOCK_TIMEOUT")
	})
}

func TestRequireAuth(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireAuth())

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.RequireAuth())
}
