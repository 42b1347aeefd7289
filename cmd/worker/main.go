package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/pkg/logger"
	"github.com/indicator-maps/internal/repository/cache"
	"github.com/indicator-maps/internal/repository/postgres"
	redisRepo "github.com/indicator-maps/internal/repository/redis"
	"github.com/indicator-maps/internal/usecase"
	"github.com/indicator-maps/internal/worker"
	"github.com/indicator-maps/internal/worker/encoding"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

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

	log.Info("Starting Indicator Encoding Worker",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Strings("levels", cfg.Worker.Levels),
		zap.Strings("locales", cfg.Worker.Locales))

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

	// 4. Connect to Redis: cache and streams use separate clients
	redisCache, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	streamClient, err := cache.NewRedisStreams(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis Streams", zap.Error(err))
	}
	defer func() {
		if err := streamClient.Close(); err != nil {
			log.Error("Failed to close Redis Streams connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	indicatorRepo := postgres.NewIndicatorRepository(db)
	territoryRepo := postgres.NewTerritoryRepository(db)
	cacheRepo := cache.NewCacheRepository(redisCache)
	streamRepo := redisRepo.NewStreamRepository(streamClient, cfg.Worker.StreamReadTimeout, log)

	// 6. Initialize use cases
	choroplethUC := usecase.NewChoroplethUseCase(
		indicatorRepo,
		territoryRepo,
		cacheRepo,
		cfg.Encoding,
		cfg.Map,
		cfg.Cache.ChoroplethTTL,
		log,
	)

	// 7. Initialize workers
	warmer := encoding.NewCacheWarmerWorker(
		streamRepo,
		cacheRepo,
		choroplethUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.Levels,
		cfg.Worker.Locales,
		cfg.Worker.MaxRetries,
		log,
	)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(warmer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 8. Wait for interrupt signal
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
