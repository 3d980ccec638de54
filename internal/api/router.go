package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talentoplus/hr-system/internal/api/handler"
	"github.com/talentoplus/hr-system/internal/api/middleware"
	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
	"github.com/talentoplus/hr-system/internal/core/service"
	"github.com/talentoplus/hr-system/internal/infrastructure/config"
	mongorepo "github.com/talentoplus/hr-system/internal/infrastructure/db/mongo"
	redisinfra "github.com/talentoplus/hr-system/internal/infrastructure/db/redis"
	"github.com/talentoplus/hr-system/internal/infrastructure/http/handlers"
	"github.com/talentoplus/hr-system/internal/infrastructure/render"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The notifier is owned by the caller so its workers can share the server's
// lifecycle.
func NewRouter(db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("hr"))

	// --- Dependencies ---
	principalRepo := mongorepo.NewPrincipalRepository(db)
	employeeRepo := mongorepo.NewEmployeeRepository(db)
	departmentRepo := mongorepo.NewDepartmentRepository(db)

	signer := service.NewJWTSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL)
	hasher := service.NewBcryptHasher(0)
	throttle := redisinfra.NewLoginThrottle(rdb, 0, 0)

	sessionService := service.NewSessionService(principalRepo, employeeRepo, hasher, signer, throttle, notifier, cfg.JWT.RefreshTTL, log)
	employeeService := service.NewEmployeeService(employeeRepo, departmentRepo, principalRepo, hasher, log)
	departmentService := service.NewDepartmentService(departmentRepo)

	authHandler := handler.NewAuthHandler(sessionService)
	employeeHandler := handler.NewEmployeeHandler(employeeService, departmentRepo, render.NewTextResumeRenderer())
	departmentHandler := handler.NewDepartmentHandler(departmentService)

	authRequired := middleware.Auth(signer)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleEmployee)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// --- Employee routes ---
	employees := e.Group("/api/employees", authRequired)
	employees.GET("", employeeHandler.List, adminOnly)
	employees.POST("", employeeHandler.Create, adminOnly)
	employees.GET("/stats", employeeHandler.Stats, adminOnly)
	employees.GET("/me", employeeHandler.Me, anyRole)
	employees.GET("/me/resume", employeeHandler.MyResume, anyRole)
	employees.GET("/:id", employeeHandler.Get, anyRole)
	employees.PUT("/:id", employeeHandler.Update, adminOnly)
	employees.DELETE("/:id", employeeHandler.Delete, adminOnly)

	// --- Department routes ---
	e.GET("/api/departments", departmentHandler.List, authRequired, anyRole)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
