package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	apperrors "github.com/indicator-maps/internal/pkg/errors"
)

const scanBatchSize = 100

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository создает репозиторий кеша поверх подключения Redis
func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger.Named("cache"),
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, apperrors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return apperrors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return apperrors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, apperrors.ErrCacheError.Wrap(err)
	}

	return val > 0, nil
}

// GetRender получает закодированную карту из кеша
func (r *cacheRepository) GetRender(ctx context.Context, key domain.RenderKey) ([]byte, error) {
	return r.Get(ctx, key.String())
}

// SetRender сохраняет закодированную карту в кеше
func (r *cacheRepository) SetRender(ctx context.Context, key domain.RenderKey, data []byte, ttl time.Duration) error {
	return r.Set(ctx, key.String(), data, ttl)
}

// InvalidateIndicator удаляет все отрисовки индикатора через SCAN, не блокируя Redis
func (r *cacheRepository) InvalidateIndicator(ctx context.Context, indicatorID string) (int, error) {
	pattern := domain.IndicatorPattern(indicatorID)
	deleted := 0

	iter := r.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				r.logger.Error("Failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
				return deleted, apperrors.ErrCacheError.Wrap(err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan cache", zap.String("pattern", pattern), zap.Error(err))
		return deleted, apperrors.ErrCacheError.Wrap(err)
	}
	if err := flush(); err != nil {
		r.logger.Error("Failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
		return deleted, apperrors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache invalidated", zap.String("pattern", pattern), zap.Int("deleted", deleted))
	return deleted, nil
}
