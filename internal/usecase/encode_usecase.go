package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/overlay"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/encoding/trend"
	"github.com/indicator-maps/internal/mapsurface"
	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/utils"
	"github.com/indicator-maps/internal/usecase/dto"
)

// EncodeUseCase кодирует переданные данные без обращения к хранилищам.
// Используется POST-эндпоинтами и CLI.
type EncodeUseCase struct {
	encoder *encoder
	sizes   sizescale.Options
	trend   *TrendUseCase
	logger  *zap.Logger
}

// NewEncodeUseCase создает новый экземпляр EncodeUseCase
func NewEncodeUseCase(encCfg config.EncodingConfig, mapCfg config.MapConfig, logger *zap.Logger) *EncodeUseCase {
	logger = logger.Named("encode")
	return &EncodeUseCase{
		encoder: newEncoder(encCfg, mapCfg),
		sizes:   encCfg.SizeOptions(),
		trend: &TrendUseCase{
			classifier: trend.NewClassifier(encCfg.TrendConfig()),
			logger:     logger,
		},
		logger: logger,
	}
}

// EncodeChoropleth кодирует объекты и строки в хороплет. Объекты с координатами вне
// допустимого диапазона отклоняются целиком с ErrInvalidGeometry.
func (uc *EncodeUseCase) EncodeChoropleth(ctx context.Context, req dto.EncodeChoroplethRequest) (*dto.ChoroplethResponse, *mapsurface.Style, error) {
	if req.Features == nil {
		return nil, nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"features": "required"})
	}

	invalid := make([]interface{}, 0)
	for i, f := range req.Features.Features {
		if f != nil && f.Geometry != nil && !utils.ValidateGeometry(f.Geometry) {
			invalid = append(invalid, i)
		}
	}
	if len(invalid) > 0 {
		return nil, nil, errors.ErrInvalidGeometry.WithDetails(map[string]interface{}{"features": invalid})
	}

	resp := uc.encoder.encode(renderInput{
		indicator: domain.Indicator{
			ID:       "custom",
			Name:     req.Title,
			Decimals: req.Decimals,
		},
		locale:      req.Locale,
		features:    req.Features.Features,
		rows:        req.Rows,
		valueColumn: req.ValueColumn,
		reference:   req.Reference,
		keyProperty: req.KeyProperty,
	})

	style, err := uc.encoder.present(resp, req.Selected, req.Symbols)
	if err != nil {
		uc.logger.Error("Failed to compose layers", zap.Error(err))
		return nil, nil, errors.ErrInternalServer.Wrap(err)
	}

	uc.logger.Debug("Features encoded",
		zap.Int("features", len(resp.Source.Features)),
		zap.Int("rows", len(req.Rows)),
		zap.Int("matched", resp.Matched),
	)
	return resp, style, nil
}

// EncodeTrend классифицирует пары значений
func (uc *EncodeUseCase) EncodeTrend(ctx context.Context, req dto.EncodeTrendRequest) (*dto.TrendResponse, error) {
	for i, p := range req.Pairs {
		if p.Polarity < trend.LowerIsBetter || p.Polarity > trend.HigherIsBetter {
			return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"pair":     i,
				"polarity": "oneof=-1 0 1",
			})
		}
	}
	return uc.trend.ClassifyPairs(req.Pairs), nil
}

// EncodeTrendRows сопоставляет строки двух периодов по коду территории и классифицирует их
func (uc *EncodeUseCase) EncodeTrendRows(ctx context.Context, from, to []domain.IndicatorRow, polarity trend.Polarity) (*dto.TrendResponse, error) {
	if polarity < trend.LowerIsBetter || polarity > trend.HigherIsBetter {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"polarity": "oneof=-1 0 1"})
	}
	if len(from) == 0 && len(to) == 0 {
		return nil, errors.ErrNoData
	}
	return uc.trend.classify(joinPeriods(from, to), polarity), nil
}

// EncodeSizes строит шкалу размеров по значениям
func (uc *EncodeUseCase) EncodeSizes(ctx context.Context, req dto.EncodeSizesRequest) (*dto.SizesResponse, error) {
	opts := uc.sizes
	if req.Bins > 0 {
		opts.Bins = req.Bins
	}
	scale := sizescale.Build(req.Values, opts)
	return &dto.SizesResponse{
		Scale: scale,
		Legend: overlay.Legend{
			Title: req.Title,
			Sizes: overlay.SizeEntries(scale),
			Note:  scale.Description,
		},
	}, nil
}

// LegendHTML выводит легенду закодированного хороплета HTML-фрагментом
func (uc *EncodeUseCase) LegendHTML(resp *dto.ChoroplethResponse) ([]byte, error) {
	return legendHTML(resp)
}
