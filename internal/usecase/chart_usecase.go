package usecase

import (
	"cmp"
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/numfmt"
	"github.com/indicator-maps/internal/usecase/dto"
)

var nan = math.NaN()

// ChartUseCase строит метки диаграммы: цвет отклонения, радиус и обводку для каждой территории
type ChartUseCase struct {
	indicatorRepo repository.IndicatorRepository
	enc           config.EncodingConfig
	defaultLevel  string
	logger        *zap.Logger
}

// NewChartUseCase создает новый экземпляр ChartUseCase
func NewChartUseCase(
	indicatorRepo repository.IndicatorRepository,
	encCfg config.EncodingConfig,
	defaultLevel string,
	logger *zap.Logger,
) *ChartUseCase {
	return &ChartUseCase{
		indicatorRepo: indicatorRepo,
		enc:           encCfg,
		defaultLevel:  defaultLevel,
		logger:        logger.Named("chart"),
	}
}

// GetChart возвращает метки, отсортированные по убыванию значения; строки без значения в конце
func (uc *ChartUseCase) GetChart(ctx context.Context, req dto.ChartRequest) (*dto.ChartResponse, error) {
	if req.Level == "" {
		req.Level = uc.defaultLevel
	}
	if req.Locale == "" {
		req.Locale = uc.enc.Locale
	}

	ind, err := findIndicator(ctx, uc.indicatorRepo, req.IndicatorID)
	if err != nil {
		return nil, err
	}

	var rows []domain.IndicatorRow
	if len(req.Codes) > 0 {
		rows, err = uc.indicatorRepo.GetValuesByCodes(ctx, req.IndicatorID, req.Period, req.Level, req.Codes)
	} else {
		rows, err = uc.indicatorRepo.GetValues(ctx, req.IndicatorID, req.Period, req.Level)
	}
	if err != nil {
		uc.logger.Error("Failed to get indicator values", zap.String("indicator", req.IndicatorID), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	if len(rows) == 0 {
		return nil, noData(ctx, uc.indicatorRepo, req.IndicatorID, map[string]interface{}{
			"period": req.Period,
			"level":  req.Level,
		})
	}

	reference, err := uc.indicatorRepo.GetReference(ctx, req.IndicatorID, req.Period)
	if err != nil {
		uc.logger.Error("Failed to get reference value", zap.String("indicator", req.IndicatorID), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	values := domain.FieldValues(rows, "")
	div := colorscale.NewDivergent(values, reference, uc.enc.ColorConfig())

	weightFields := uc.enc.ChoroplethOptions().WeightFields
	weights := make([]float64, 0, len(rows))
	for _, r := range rows {
		if w, ok := rowWeight(r, weightFields); ok {
			weights = append(weights, w)
		}
	}
	scale := sizescale.Build(weights, uc.enc.SizeOptions())

	format := numfmt.New(req.Locale, ind.Decimals)
	marks := make([]dto.ChartMark, 0, len(rows))
	for _, r := range rows {
		marks = append(marks, chartMark(r, div, scale, format, weightFields))
	}
	slices.SortStableFunc(marks, compareMarks)

	return &dto.ChartResponse{
		Indicator:  indicatorInfo(*ind),
		Period:     req.Period,
		Level:      req.Level,
		Marks:      marks,
		ColorScale: colorScaleInfo(div, values),
		SizeScale:  scale,
	}, nil
}

func chartMark(r domain.IndicatorRow, div *colorscale.Divergent, scale *sizescale.Scale, format *numfmt.Formatter, weightFields []string) dto.ChartMark {
	m := dto.ChartMark{
		Code:       r.Code,
		Label:      r.Label,
		Color: colorscale.Hex(div.NoData()),
	}
	if m.Label == "" {
		m.Label = r.Code
	}

	if v, ok := r.Field(""); ok {
		dev := div.Deviation(v)
		m.Value = &v
		m.Deviation = &dev
		m.Color = div.Hex(v)
	}
	m.ValueLabel = format.FormatPtr(m.Value)

	w, ok := rowWeight(r, weightFields)
	if ok {
		m.Weight = &w
		m.Radius = scale.Radius(w)
		m.IsOutlier = scale.IsOutlier(w)
		m.Stroke = scale.Stroke(w)
		m.StrokeWidth = scale.StrokeWidth(w)
	} else {
		m.Radius = scale.Radius(nan)
		m.Stroke = scale.Stroke(nan)
		m.StrokeWidth = scale.StrokeWidth(nan)
	}
	return m
}

// rowWeight возвращает первый положительный вес строки по списку полей
func rowWeight(r domain.IndicatorRow, fields []string) (float64, bool) {
	for _, name := range fields {
		if w, ok := r.Field(name); ok && w > 0 {
			return w, true
		}
	}
	return 0, false
}

func compareMarks(a, b dto.ChartMark) int {
	switch {
	case a.Value == nil && b.Value == nil:
		return cmp.Compare(a.Code, b.Code)
	case a.Value == nil:
		return 1
	case b.Value == nil:
		return -1
	}
	if c := cmp.Compare(*b.Value, *a.Value); c != 0 {
		return c
	}
	return cmp.Compare(a.Code, b.Code)
}
