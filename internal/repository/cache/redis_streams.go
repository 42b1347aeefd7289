package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
)

// NewRedisStreams создает отдельный клиент для стримов событий индикаторов
func NewRedisStreams(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	return connect(cfg, logger.Named("redis"), "streams")
}
