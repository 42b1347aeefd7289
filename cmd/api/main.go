package main

// @title Indicator Maps API
// @version 1.0.0
// @description Сервис кодирования территориальных индикаторов в картографические представления.
// @description
// @description Основные возможности:
// @description - Хороплет с дивергентной шкалой относительно опорного значения
// @description - Шкала размеров с устойчивым к выбросам разбиением
// @description - Классификация динамики между двумя периодами
// @description - Стиль MapLibre, легенда и данные для графиков
// @description - Кодирование произвольных GeoJSON без обращения к базе

// @contact.name API Support
// @contact.email support@indicator-maps.dev

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

	_ "github.com/indicator-maps/docs"
	"github.com/indicator-maps/internal/config"
	httpDelivery "github.com/indicator-maps/internal/delivery/http"
	"github.com/indicator-maps/internal/delivery/http/handler"
	"github.com/indicator-maps/internal/pkg/logger"
	"github.com/indicator-maps/internal/repository/cache"
	"github.com/indicator-maps/internal/repository/postgres"
	"github.com/indicator-maps/internal/usecase"
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

	log.Info("Starting Indicator Maps API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("default_level", cfg.Map.DefaultLevel),
		zap.String("locale", cfg.Encoding.Locale),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

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
	indicatorRepo := postgres.NewIndicatorRepository(db)
	territoryRepo := postgres.NewTerritoryRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)

	// 7. Initialize use cases
	choroplethUC := usecase.NewChoroplethUseCase(
		indicatorRepo,
		territoryRepo,
		cacheRepo,
		cfg.Encoding,
		cfg.Map,
		cfg.Cache.ChoroplethTTL,
		log,
	)
	chartUC := usecase.NewChartUseCase(indicatorRepo, cfg.Encoding, cfg.Map.DefaultLevel, log)
	trendUC := usecase.NewTrendUseCase(indicatorRepo, cfg.Encoding, cfg.Map.DefaultLevel, log)
	encodeUC := usecase.NewEncodeUseCase(cfg.Encoding, cfg.Map, log)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": db,
		"redis":    redisClient,
	}, log)
	indicatorHandler := handler.NewIndicatorHandler(choroplethUC, chartUC, trendUC, log)
	encodeHandler := handler.NewEncodeHandler(encodeUC, log)

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, healthHandler, indicatorHandler, encodeHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
