package usecase

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	"github.com/indicator-maps/internal/encoding/overlay"
	"github.com/indicator-maps/internal/encoding/trend"
	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/usecase/dto"
)

// TrendUseCase классифицирует динамику индикатора между двумя периодами
type TrendUseCase struct {
	indicatorRepo repository.IndicatorRepository
	classifier    *trend.Classifier
	defaultLevel  string
	logger        *zap.Logger
}

// NewTrendUseCase создает новый экземпляр TrendUseCase
func NewTrendUseCase(
	indicatorRepo repository.IndicatorRepository,
	encCfg config.EncodingConfig,
	defaultLevel string,
	logger *zap.Logger,
) *TrendUseCase {
	return &TrendUseCase{
		indicatorRepo: indicatorRepo,
		classifier:    trend.NewClassifier(encCfg.TrendConfig()),
		defaultLevel:  defaultLevel,
		logger:        logger.Named("trend"),
	}
}

// GetTrend возвращает категорию для каждой территории, присутствующей хотя бы в одном периоде.
// Территория без значения в одном из периодов получает нейтральную категорию.
func (uc *TrendUseCase) GetTrend(ctx context.Context, req dto.TrendRequest) (*dto.TrendResponse, error) {
	if req.Level == "" {
		req.Level = uc.defaultLevel
	}

	ind, err := findIndicator(ctx, uc.indicatorRepo, req.IndicatorID)
	if err != nil {
		return nil, err
	}

	from, err := uc.indicatorRepo.GetValues(ctx, req.IndicatorID, req.From, req.Level)
	if err != nil {
		uc.logger.Error("Failed to get indicator values", zap.String("period", req.From), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	to, err := uc.indicatorRepo.GetValues(ctx, req.IndicatorID, req.To, req.Level)
	if err != nil {
		uc.logger.Error("Failed to get indicator values", zap.String("period", req.To), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	if len(from) == 0 && len(to) == 0 {
		return nil, noData(ctx, uc.indicatorRepo, req.IndicatorID, map[string]interface{}{
			"from":  req.From,
			"to":    req.To,
			"level": req.Level,
		})
	}

	info := indicatorInfo(*ind)
	resp := uc.classify(joinPeriods(from, to), trend.Polarity(ind.Polarity))
	resp.Indicator = &info
	resp.From = req.From
	resp.To = req.To
	resp.Level = req.Level
	return resp, nil
}

// ClassifyPairs классифицирует переданные пары без обращения к БД
func (uc *TrendUseCase) ClassifyPairs(pairs []trend.Pair) *dto.TrendResponse {
	items := make([]pairItem, len(pairs))
	for i, p := range pairs {
		items[i] = pairItem{pair: p}
	}
	return uc.classifyItems(items)
}

type pairItem struct {
	pair  trend.Pair
	label string
}

func (uc *TrendUseCase) classify(items []pairItem, polarity trend.Polarity) *dto.TrendResponse {
	for i := range items {
		items[i].pair.Polarity = polarity
	}
	return uc.classifyItems(items)
}

func (uc *TrendUseCase) classifyItems(items []pairItem) *dto.TrendResponse {
	pairs := make([]trend.Pair, len(items))
	out := make([]dto.TrendItem, len(items))
	for i, it := range items {
		pairs[i] = it.pair
		cat := uc.classifier.ClassifyPair(it.pair)
		out[i] = dto.TrendItem{
			Code:          it.pair.Code,
			Label:         it.label,
			From:          finitePtr(it.pair.T1),
			To:            finitePtr(it.pair.T2),
			Category:      cat,
			CategoryLabel: cat.Label(),
			Color:         cat.Color(),
		}
	}

	summary := uc.classifier.Summarize(pairs)
	return &dto.TrendResponse{
		Items:   out,
		Summary: summary,
		Legend:  overlay.TrendEntries(summary),
	}
}

// joinPeriods сопоставляет строки двух периодов по коду территории.
// Отсутствующее значение передается классификатору как NaN.
func joinPeriods(from, to []domain.IndicatorRow) []pairItem {
	fromByCode := domain.RowsByCode(from)
	toByCode := domain.RowsByCode(to)

	codes := make([]string, 0, len(toByCode)+len(fromByCode))
	for code := range fromByCode {
		codes = append(codes, code)
	}
	for code := range toByCode {
		if _, ok := fromByCode[code]; !ok {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)

	items := make([]pairItem, 0, len(codes))
	for _, code := range codes {
		it := pairItem{pair: trend.Pair{Code: code, T1: nan, T2: nan}}
		if r, ok := fromByCode[code]; ok {
			it.label = r.Label
			if v, ok := r.Field(""); ok {
				it.pair.T1 = v
			}
		}
		if r, ok := toByCode[code]; ok {
			if r.Label != "" {
				it.label = r.Label
			}
			if v, ok := r.Field(""); ok {
				it.pair.T2 = v
			}
		}
		items = append(items, it)
	}
	return items
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
