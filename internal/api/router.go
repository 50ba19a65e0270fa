package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sphe667/ViewLab/internal/auth"
	"github.com/Sphe667/ViewLab/internal/booking"
	bookingHttp "github.com/Sphe667/ViewLab/internal/booking/http"
	"github.com/Sphe667/ViewLab/internal/lab"
	labHttp "github.com/Sphe667/ViewLab/internal/lab/http"
	"github.com/Sphe667/ViewLab/internal/student"
	studentHttp "github.com/Sphe667/ViewLab/internal/student/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	StudentService student.Service
	LabService     lab.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager

	RateLimitPerSec float64 // 0 disables rate limiting
	RateLimitBurst  int
	LabsCacheTTL    time.Duration // 0 disables the lab list cache
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - RequestLogger: tags each request with an id and logs it through zap.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimitPerSec > 0 {
		r.Use(RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Lab topology never changes at runtime; availability is never cached.
	var labListCache gin.HandlerFunc
	if cfg.LabsCacheTTL > 0 {
		labListCache = Cache(cache.New(cfg.LabsCacheTTL, 2*cfg.LabsCacheTTL), cfg.LabsCacheTTL)
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	studentHandler := studentHttp.NewHandler(cfg.StudentService, cfg.BookingService, cfg.JWTManager)
	labHandler := labHttp.NewHandler(cfg.LabService, cfg.BookingService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		studentHttp.RegisterRoutes(v1, studentHandler, authMiddleware)
		labHttp.RegisterRoutes(v1, labHandler, labListCache)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
