package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
)

type territoryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTerritoryRepository создает репозиторий территорий
func NewTerritoryRepository(db *DB) repository.TerritoryRepository {
	return &territoryRepository{
		db:     db,
		logger: db.logger.Named("territory_repository"),
	}
}

// GetByLevel возвращает территории уровня с геометрией в GeoJSON (упрощенной для крупных уровней)
func (r *territoryRepository) GetByLevel(ctx context.Context, level string) ([]*domain.Territory, error) {
	var territories []*domain.Territory
	err := r.db.SelectContext(ctx, &territories, queryTerritoriesByLevel,
		level, ToleranceForLevel(level), GeoJSONPrecision)
	if err != nil {
		r.logger.Error("failed to get territories", zap.String("level", level), zap.Error(err))
		return nil, fmt.Errorf("get territories %s: %w", level, err)
	}

	r.logger.Debug("territories loaded",
		zap.String("level", level),
		zap.Int("count", len(territories)))
	return territories, nil
}
