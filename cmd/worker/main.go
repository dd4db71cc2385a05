package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carpark-service/internal/config"
	"github.com/carpark-service/internal/pkg/logger"
	"github.com/carpark-service/internal/pkg/svy21"
	"github.com/carpark-service/internal/repository/cache"
	"github.com/carpark-service/internal/repository/datagov"
	"github.com/carpark-service/internal/repository/hdb"
	"github.com/carpark-service/internal/repository/postgres"
	"github.com/carpark-service/internal/usecase"
	"github.com/carpark-service/internal/worker"
	"github.com/carpark-service/internal/worker/ingest"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Availability Sync Worker")
	log.Info("Configuration loaded",
		zap.Duration("sync_interval", cfg.Worker.SyncInterval),
		zap.String("feed_url", cfg.CarPark.FeedURL))

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

	// 5. Initialize repositories
	carParkRepo := postgres.NewCarParkRepository(db)
	geoRepo := cache.NewGeoIndexRepository(redisClient, cfg.CarPark.GeoCacheTTL)
	attrSource := hdb.NewCSVSource(cfg.CarPark.CSVPath, log)
	availSource := datagov.NewAvailabilityClient(
		cfg.CarPark.FeedURL,
		cfg.CarPark.FeedAPIKey,
		cfg.CarPark.FeedTimeout,
		log,
	)

	// 6. Initialize use cases
	converter := svy21.New(svy21.Bounds{
		MinLat: cfg.Geo.MinLat,
		MaxLat: cfg.Geo.MaxLat,
		MinLon: cfg.Geo.MinLon,
		MaxLon: cfg.Geo.MaxLon,
	})

	ingestUC := usecase.NewIngestUseCase(
		carParkRepo,
		geoRepo,
		attrSource,
		availSource,
		converter,
		log,
		cfg.CarPark.ImportBatchSize,
	)

	// 7. Initialize workers
	availabilityWorker := ingest.NewAvailabilityWorker(
		ingestUC,
		cfg.Worker.SyncInterval,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(availabilityWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
