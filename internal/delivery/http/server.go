package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/config"
	"github.com/carpark-service/internal/delivery/http/handler"
	"github.com/carpark-service/internal/delivery/http/middleware"
	"github.com/carpark-service/internal/repository/cache"
	"github.com/carpark-service/internal/repository/postgres"
)

// Server - Fiber HTTP server
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	carParkHandler *handler.CarParkHandler
	ingestHandler  *handler.IngestHandler

	db    *postgres.DB
	redis *cache.Redis
}

// NewServer - creates a new HTTP server
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	carParkHandler *handler.CarParkHandler,
	ingestHandler *handler.IngestHandler,
	db *postgres.DB,
	redis *cache.Redis,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Car Park Availability Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		carParkHandler: carParkHandler,
		ingestHandler:  ingestHandler,
		db:             db,
		redis:          redis,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	s.app.Get("/health", s.health)

	v1 := s.app.Group("/v1")

	carparks := v1.Group("/carparks")
	carparks.Get("/nearest", s.carParkHandler.GetNearest)
	carparks.Get("/available", s.carParkHandler.ListAvailable)
	carparks.Get("/stats", s.carParkHandler.GetStats)
	carparks.Post("/import", s.ingestHandler.Import)
	carparks.Post("/sync-availability", s.ingestHandler.SyncAvailability)
	carparks.Delete("/:code", s.carParkHandler.SoftDelete)
	carparks.Post("/:code/restore", s.carParkHandler.Restore)
}

// health reports the state of the server and its backing services. The geo
// index being down degrades the service, it does not fail it.
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbStatus := "healthy"
	if err := s.db.Health(ctx); err != nil {
		dbStatus = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	redisStatus := "healthy"
	if err := s.redis.Health(ctx); err != nil {
		redisStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   dbStatus,
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now(),
	})
}

// Start - starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - gracefully shuts the HTTP server down
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
