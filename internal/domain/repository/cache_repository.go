package repository

import (
	"context"
	"time"

	"github.com/indicator-maps/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetRender получает закодированную карту из кеша
	GetRender(ctx context.Context, key domain.RenderKey) ([]byte, error)

	// SetRender сохраняет закодированную карту в кеше
	SetRender(ctx context.Context, key domain.RenderKey, data []byte, ttl time.Duration) error

	// InvalidateIndicator удаляет все отрисовки индикатора, возвращает число удаленных ключей
	InvalidateIndicator(ctx context.Context, indicatorID string) (int, error)
}
