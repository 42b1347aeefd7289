package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
)

type indicatorRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewIndicatorRepository создает репозиторий индикаторов
func NewIndicatorRepository(db *DB) repository.IndicatorRepository {
	return &indicatorRepository{
		db:     db,
		logger: db.logger.Named("indicator_repository"),
	}
}

func (r *indicatorRepository) GetByID(ctx context.Context, id string) (*domain.Indicator, error) {
	var ind domain.Indicator
	if err := r.db.GetContext(ctx, &ind, queryIndicatorByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get indicator", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get indicator %s: %w", id, err)
	}
	return &ind, nil
}

func (r *indicatorRepository) GetValues(ctx context.Context, indicatorID, period, level string) ([]domain.IndicatorRow, error) {
	var rows []domain.IndicatorRow
	if err := r.db.SelectContext(ctx, &rows, queryIndicatorValues, indicatorID, period, level); err != nil {
		r.logger.Error("failed to get indicator values",
			zap.String("indicator", indicatorID),
			zap.String("period", period),
			zap.String("level", level),
			zap.Error(err))
		return nil, fmt.Errorf("get values %s/%s/%s: %w", indicatorID, period, level, err)
	}

	r.logger.Debug("indicator values loaded",
		zap.String("indicator", indicatorID),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func (r *indicatorRepository) GetValuesByCodes(ctx context.Context, indicatorID, period, level string, codes []string) ([]domain.IndicatorRow, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	if len(codes) > MaxCodesPerQuery {
		return nil, fmt.Errorf("too many codes: %d > %d", len(codes), MaxCodesPerQuery)
	}

	var rows []domain.IndicatorRow
	err := r.db.SelectContext(ctx, &rows, queryIndicatorValuesByCodes, indicatorID, period, level, pq.Array(codes))
	if err != nil {
		r.logger.Error("failed to get indicator values by codes",
			zap.String("indicator", indicatorID),
			zap.Int("codes", len(codes)),
			zap.Error(err))
		return nil, fmt.Errorf("get values by codes: %w", err)
	}
	return rows, nil
}

func (r *indicatorRepository) GetReference(ctx context.Context, indicatorID, period string) (*float64, error) {
	var value float64
	if err := r.db.GetContext(ctx, &value, queryIndicatorReference, indicatorID, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get reference value",
			zap.String("indicator", indicatorID),
			zap.String("period", period),
			zap.Error(err))
		return nil, fmt.Errorf("get reference %s/%s: %w", indicatorID, period, err)
	}
	return &value, nil
}

func (r *indicatorRepository) ListPeriods(ctx context.Context, indicatorID string) ([]string, error) {
	var periods []string
	if err := r.db.SelectContext(ctx, &periods, queryIndicatorPeriods, indicatorID); err != nil {
		r.logger.Error("failed to list periods", zap.String("indicator", indicatorID), zap.Error(err))
		return nil, fmt.Errorf("list periods %s: %w", indicatorID, err)
	}
	return periods, nil
}
