package main

// @title Car Park Availability Service API
// @version 1.0.0
// @description Service answering "where can I park near me right now". Car park attributes and positions come from a bulk CSV feed, live lot counts from a streaming availability feed. Lookups are served from a Redis geo index backed by PostgreSQL.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/carpark-service/docs"
	"github.com/carpark-service/internal/config"
	httpDelivery "github.com/carpark-service/internal/delivery/http"
	"github.com/carpark-service/internal/delivery/http/handler"
	"github.com/carpark-service/internal/pkg/logger"
	"github.com/carpark-service/internal/pkg/svy21"
	"github.com/carpark-service/internal/repository/cache"
	"github.com/carpark-service/internal/repository/datagov"
	"github.com/carpark-service/internal/repository/hdb"
	"github.com/carpark-service/internal/repository/postgres"
	"github.com/carpark-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Car Park Availability Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	carParkRepo := postgres.NewCarParkRepository(db)
	geoRepo := cache.NewGeoIndexRepository(redisClient, cfg.CarPark.GeoCacheTTL)
	attrSource := hdb.NewCSVSource(cfg.CarPark.CSVPath, log)
	availSource := datagov.NewAvailabilityClient(
		cfg.CarPark.FeedURL,
		cfg.CarPark.FeedAPIKey,
		cfg.CarPark.FeedTimeout,
		log,
	)

	log.Info("Repositories initialized")

	// 7. Initialize use cases
	converter := svy21.New(svy21.Bounds{
		MinLat: cfg.Geo.MinLat,
		MaxLat: cfg.Geo.MaxLat,
		MinLon: cfg.Geo.MinLon,
		MaxLon: cfg.Geo.MaxLon,
	})

	carParkUC := usecase.NewCarParkUseCase(
		carParkRepo,
		geoRepo,
		log,
		cfg.CarPark.SearchRadiusKm,
		cfg.CarPark.MaxSearchRadiusKm,
	)

	ingestUC := usecase.NewIngestUseCase(
		carParkRepo,
		geoRepo,
		attrSource,
		availSource,
		converter,
		log,
		cfg.CarPark.ImportBatchSize,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	carParkHandler := handler.NewCarParkHandler(carParkUC, log)
	ingestHandler := handler.NewIngestHandler(ingestUC, log)

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		carParkHandler,
		ingestHandler,
		db,
		redisClient,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
