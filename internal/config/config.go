package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Database pool and transactions
	DBMaxConns      int
	DBLockTimeout   time.Duration
	DBTxMaxAttempts int

	// HTTP guards
	RateLimitPerSec float64
	RateLimitBurst  int
	LabsCacheTTL    time.Duration

	// Provisioning
	LabsFile    string
	SeedOnStart bool
}

// Load loads configuration from .env (optional) and environment variables.
// Only DB_DSN is mandatory here; the API server additionally calls RequireAuth.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := &Config{}
	var err error

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	if cfg.DBLockTimeout, err = getEnvAsDuration("DB_LOCK_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBTxMaxAttempts, err = getEnvAsInt("DB_TX_MAX_ATTEMPTS", 3); err != nil {
		return nil, fmt.Errorf("invalid DB_TX_MAX_ATTEMPTS: %w", err)
	}
	if cfg.DBTxMaxAttempts < 1 {
		return nil, fmt.Errorf("DB_TX_MAX_ATTEMPTS must be at least 1, got %d", cfg.DBTxMaxAttempts)
	}

	rate := getEnv("RATE_LIMIT_PER_SEC", "10")
	if cfg.RateLimitPerSec, err = strconv.ParseFloat(rate, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SEC %q: %w", rate, err)
	}
	if cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.LabsCacheTTL, err = getEnvAsDuration("LABS_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	cfg.LabsFile = getEnv("LABS_FILE", "config/labs.yaml")
	cfg.SeedOnStart = getEnv("SEED_ON_START", "false") == "true"

	return cfg, nil
}

// RequireAuth reports whether the settings needed to issue tokens are present.
func (c *Config) RequireAuth() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses a time.Duration such as "15m" or "2s".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
