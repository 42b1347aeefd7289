package repository

import (
	"context"

	"github.com/indicator-maps/internal/domain"
)

// TerritoryRepository определяет методы чтения геометрии территорий
type TerritoryRepository interface {
	// GetByLevel возвращает все территории уровня
	GetByLevel(ctx context.Context, level string) ([]*domain.Territory, error)
}
