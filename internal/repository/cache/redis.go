package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
)

const pingTimeout = 5 * time.Second

// Redis - подключение к Redis для кеша закодированных карт
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// connect создает клиент и проверяет соединение
func connect(cfg *config.RedisConfig, logger *zap.Logger, purpose string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis (%s): %w", purpose, err)
	}

	logger.Info("Redis connected",
		zap.String("purpose", purpose),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("db", cfg.DB),
	)
	return client, nil
}

// NewRedis подключается к Redis для кеша
func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	logger = logger.Named("redis")
	client, err := connect(cfg, logger, "cache")
	if err != nil {
		return nil, err
	}
	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

// Health проверяет доступность Redis
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

// NewRedisFromClient оборачивает готовый клиент (используется в тестах)
func NewRedisFromClient(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}
