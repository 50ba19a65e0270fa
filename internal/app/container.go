package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Sphe667/ViewLab/internal/api"
	"github.com/Sphe667/ViewLab/internal/auth"
	"github.com/Sphe667/ViewLab/internal/booking"
	"github.com/Sphe667/ViewLab/internal/db"
	"github.com/Sphe667/ViewLab/internal/lab"
	"github.com/Sphe667/ViewLab/internal/student"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	LockTimeout   time.Duration
	TxMaxAttempts int

	RateLimitPerSec float64
	RateLimitBurst  int
	LabsCacheTTL    time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	LabService lab.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	txRunner := db.NewRunner(cfg.DBPool, db.RunnerConfig{
		LockTimeout: cfg.LockTimeout,
		MaxAttempts: cfg.TxMaxAttempts,
		Backoff:     20 * time.Millisecond,
	}, cfg.Logger)

	// Student Module
	studentRepo := student.NewPgxRepository(cfg.DBPool)
	studentService := student.NewService(studentRepo, passwordHasher)

	// Lab Module
	labRepo := lab.NewPgxRepository(cfg.DBPool)
	labService := lab.NewService(labRepo, txRunner, cfg.Logger.Named("lab"))

	// Booking Module (the lab repository is its inventory)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, labRepo, txRunner, cfg.Logger.Named("booking"))

	// API Router Config
	routerParams := api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Logger:          cfg.Logger.Named("http"),
		StudentService:  studentService,
		LabService:      labService,
		BookingService:  bookingService,
		JWTManager:      jwtManager,
		RateLimitPerSec: cfg.RateLimitPerSec,
		RateLimitBurst:  cfg.RateLimitBurst,
		LabsCacheTTL:    cfg.LabsCacheTTL,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		LabService: labService,
	}
}
