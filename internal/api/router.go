package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nutritrack/calorie-api/internal/api/handler"
	"github.com/nutritrack/calorie-api/internal/api/middleware"
	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
	"github.com/nutritrack/calorie-api/internal/core/service"
	"github.com/nutritrack/calorie-api/internal/infrastructure/config"
	mongodb "github.com/nutritrack/calorie-api/internal/infrastructure/db/mongo"
	redisdb "github.com/nutritrack/calorie-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("calorie_api"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	mealRepo := mongodb.NewMealRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)

	userService := service.NewUserService(userRepo, mealRepo, audit, cfg.DefaultCalorieTarget, log)
	authService := service.NewAuthService(userRepo, throttle, audit, cfg.JWTSecret, cfg.TokenTTL, log)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	authMW := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes (public) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/signup", authHandler.SignUp)

	// --- Directory routes ---
	users := e.Group("/v1/users", authMW)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleManager))
	users.POST("", userHandler.Create, middleware.RBAC(domain.RoleManager))
	users.PUT("", userHandler.Update, middleware.RBAC(domain.RoleUser))
	users.GET("/:userName", userHandler.Get, middleware.RBAC(domain.RoleUser))
	users.DELETE("/:userName", userHandler.Delete, middleware.RBAC(domain.RoleManager))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
