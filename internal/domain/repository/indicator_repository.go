package repository

import (
	"context"

	"github.com/indicator-maps/internal/domain"
)

// IndicatorRepository определяет методы чтения индикаторов и их значений
type IndicatorRepository interface {
	// GetByID возвращает метаданные индикатора, nil если не найден
	GetByID(ctx context.Context, id string) (*domain.Indicator, error)

	// GetValues возвращает значения индикатора за период на уровне территорий
	GetValues(ctx context.Context, indicatorID, period, level string) ([]domain.IndicatorRow, error)

	// GetValuesByCodes возвращает значения только для указанных территорий
	GetValuesByCodes(ctx context.Context, indicatorID, period, level string, codes []string) ([]domain.IndicatorRow, error)

	// GetReference возвращает опорное (национальное) значение, nil если не задано
	GetReference(ctx context.Context, indicatorID, period string) (*float64, error)

	// ListPeriods возвращает периоды, за которые есть значения
	ListPeriods(ctx context.Context, indicatorID string) ([]string, error)
}
