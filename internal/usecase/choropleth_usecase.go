package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	"github.com/indicator-maps/internal/mapsurface"
	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/utils"
	"github.com/indicator-maps/internal/usecase/dto"
)

// ChoroplethUseCase кодирует сохраненные индикаторы в хороплет и кеширует результат
type ChoroplethUseCase struct {
	indicatorRepo repository.IndicatorRepository
	territoryRepo repository.TerritoryRepository
	cacheRepo     repository.CacheRepository
	encoder       *encoder
	defaultLevel  string
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewChoroplethUseCase создает новый экземпляр ChoroplethUseCase
func NewChoroplethUseCase(
	indicatorRepo repository.IndicatorRepository,
	territoryRepo repository.TerritoryRepository,
	cacheRepo repository.CacheRepository,
	encCfg config.EncodingConfig,
	mapCfg config.MapConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ChoroplethUseCase {
	return &ChoroplethUseCase{
		indicatorRepo: indicatorRepo,
		territoryRepo: territoryRepo,
		cacheRepo:     cacheRepo,
		encoder:       newEncoder(encCfg, mapCfg),
		defaultLevel:  mapCfg.DefaultLevel,
		cacheTTL:      cacheTTL,
		logger:        logger.Named("choropleth"),
	}
}

// Render возвращает закодированную карту со стеком слоев и выделением запроса
func (uc *ChoroplethUseCase) Render(ctx context.Context, req dto.ChoroplethRequest) (*dto.ChoroplethResponse, error) {
	resp, _, err := uc.render(ctx, req)
	return resp, err
}

// Style возвращает документ стиля MapLibre для той же отрисовки
func (uc *ChoroplethUseCase) Style(ctx context.Context, req dto.ChoroplethRequest) (*mapsurface.Style, error) {
	_, style, err := uc.render(ctx, req)
	return style, err
}

// LegendHTML возвращает легенду отрисовки HTML-фрагментом
func (uc *ChoroplethUseCase) LegendHTML(ctx context.Context, req dto.ChoroplethRequest) ([]byte, error) {
	resp, err := uc.load(ctx, uc.withDefaults(req))
	if err != nil {
		return nil, err
	}
	return legendHTML(resp)
}

// Warm перекодирует отрисовку мимо кеша и сохраняет ее. Возвращает число объектов источника.
func (uc *ChoroplethUseCase) Warm(ctx context.Context, key domain.RenderKey) (int, error) {
	req := uc.withDefaults(dto.ChoroplethRequest{
		IndicatorID: key.IndicatorID,
		Period:      key.Period,
		Level:       key.Level,
		Locale:      key.Locale,
	})
	resp, err := uc.encode(ctx, req)
	if err != nil {
		return 0, err
	}
	uc.store(ctx, req.Key(), resp)
	return len(resp.Source.Features), nil
}

func (uc *ChoroplethUseCase) render(ctx context.Context, req dto.ChoroplethRequest) (*dto.ChoroplethResponse, *mapsurface.Style, error) {
	req = uc.withDefaults(req)
	resp, err := uc.load(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	style, err := uc.encoder.present(resp, req.Selected, req.Symbols)
	if err != nil {
		uc.logger.Error("Failed to compose layers", zap.String("indicator", req.IndicatorID), zap.Error(err))
		return nil, nil, errors.ErrInternalServer.Wrap(err)
	}
	return resp, style, nil
}

func (uc *ChoroplethUseCase) withDefaults(req dto.ChoroplethRequest) dto.ChoroplethRequest {
	if req.Level == "" {
		req.Level = uc.defaultLevel
	}
	req.Locale = uc.encoder.locale(req.Locale)
	return req
}

// load читает отрисовку из кеша, при промахе кодирует и кеширует.
// Ошибки кеша не прерывают запрос.
func (uc *ChoroplethUseCase) load(ctx context.Context, req dto.ChoroplethRequest) (*dto.ChoroplethResponse, error) {
	key := req.Key()

	data, err := uc.cacheRepo.GetRender(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to get render from cache", zap.String("key", key.String()), zap.Error(err))
	}
	if err == nil && data != nil {
		var cached dto.ChoroplethResponse
		decodeErr := json.Unmarshal(data, &cached)
		if decodeErr == nil {
			uc.logger.Debug("Render fetched from cache", zap.String("key", key.String()))
			cached.Cached = true
			return &cached, nil
		}
		uc.logger.Warn("Failed to decode cached render", zap.String("key", key.String()), zap.Error(decodeErr))
	}

	resp, err := uc.encode(ctx, req)
	if err != nil {
		return nil, err
	}
	uc.store(ctx, key, resp)
	return resp, nil
}

func (uc *ChoroplethUseCase) encode(ctx context.Context, req dto.ChoroplethRequest) (*dto.ChoroplethResponse, error) {
	ind, err := findIndicator(ctx, uc.indicatorRepo, req.IndicatorID)
	if err != nil {
		return nil, err
	}

	rows, err := uc.indicatorRepo.GetValues(ctx, req.IndicatorID, req.Period, req.Level)
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

	territories, err := uc.territoryRepo.GetByLevel(ctx, req.Level)
	if err != nil {
		uc.logger.Error("Failed to get territories", zap.String("level", req.Level), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	in := renderInput{
		indicator: *ind,
		period:    req.Period,
		level:     req.Level,
		locale:    req.Locale,
		rows:      rows,
		reference: reference,
	}
	var extent orb.Bound
	for _, t := range territories {
		f, err := t.Feature()
		if err != nil {
			uc.logger.Warn("Skipping territory with invalid geometry", zap.String("code", t.Code), zap.Error(err))
			continue
		}
		if f.Geometry != nil {
			if extent.IsZero() {
				extent = f.Geometry.Bound()
			} else {
				extent = extent.Union(f.Geometry.Bound())
			}
		}
		in.features = append(in.features, f)
	}

	resp := uc.encoder.encode(in)
	uc.logger.Debug("Indicator encoded",
		zap.String("indicator", req.IndicatorID),
		zap.String("period", req.Period),
		zap.String("level", req.Level),
		zap.Int("features", len(resp.Source.Features)),
		zap.Int("matched", resp.Matched),
		zap.Float64("extent_km", utils.DiagonalKm(extent)),
	)
	return resp, nil
}

func (uc *ChoroplethUseCase) store(ctx context.Context, key domain.RenderKey, resp *dto.ChoroplethResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		uc.logger.Warn("Failed to encode render for cache", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := uc.cacheRepo.SetRender(ctx, key, payload, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache render", zap.String("key", key.String()), zap.Error(err))
	}
}
