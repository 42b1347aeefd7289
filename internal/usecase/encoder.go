package usecase

import (
	"bytes"
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	"github.com/indicator-maps/internal/encoding/choropleth"
	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/overlay"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/mapsurface"
	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/numfmt"
	"github.com/indicator-maps/internal/usecase/dto"
)

// SourceID - идентификатор источника хороплета в стиле карты
const SourceID = "indicator"

// renderInput - входные данные одной отрисовки хороплета
type renderInput struct {
	indicator   domain.Indicator
	period      string
	level       string
	locale      string
	features    []*geojson.Feature
	rows        []domain.IndicatorRow
	valueColumn string
	reference   *float64
	keyProperty string
}

// encoder собирает шкалы, источник и легенды из параметров конфигурации.
// Не хранит состояния между вызовами.
type encoder struct {
	enc    config.EncodingConfig
	mapCfg config.MapConfig
}

func newEncoder(enc config.EncodingConfig, mapCfg config.MapConfig) *encoder {
	return &encoder{enc: enc, mapCfg: mapCfg}
}

func (e *encoder) locale(locale string) string {
	if locale == "" {
		return e.enc.Locale
	}
	return locale
}

func (e *encoder) options(keyProperty string, format *numfmt.Formatter) choropleth.Options {
	opts := e.enc.ChoroplethOptions()
	opts.ValueFormatter = format.Format
	if keyProperty != "" {
		opts.KeyProperty = keyProperty
	}
	return opts
}

// encode строит обогащенный источник, шкалы, границы и легенду. Стек слоев не компонуется:
// он зависит от выделения и символов конкретного запроса, см. present.
func (e *encoder) encode(in renderInput) *dto.ChoroplethResponse {
	locale := e.locale(in.locale)
	format := numfmt.New(locale, in.indicator.Decimals)
	opts := e.options(in.keyProperty, format)

	values := domain.FieldValues(in.rows, in.valueColumn)
	div := colorscale.NewDivergent(values, in.reference, e.enc.ColorConfig())
	fc := choropleth.BuildSource(in.features, domain.RowsByCode(in.rows), in.valueColumn, div.Hex, opts)

	scale := sizescale.Build(choropleth.SizeWeights(fc, opts), e.enc.SizeOptions())
	choropleth.ApplySizeScale(fc, scale, opts)

	resp := &dto.ChoroplethResponse{
		Indicator:  indicatorInfo(in.indicator),
		Period:     in.period,
		Level:      in.level,
		Locale:     locale,
		Source:     fc,
		Center:     domain.PointFrom(e.mapCfg.Center()),
		ColorScale: colorScaleInfo(div, values),
		SizeScale:  scale,
		Matched:    countMatched(fc, opts.Props.Value),
		Layers:     choropleth.NewDescriptor(SourceID, opts),
	}

	bounds := choropleth.ComputeBoundsWithFallback(in.features, e.mapCfg.Center())
	resp.Center = domain.PointFrom(bounds.Center)
	if bounds.Bounds != nil {
		bb := domain.BoundingBoxFrom(*bounds.Bounds)
		resp.Bounds = &bb
	}

	resp.Legend = overlay.Legend{
		Title:     legendTitle(in.indicator),
		Colors:    overlay.ColorEntries(resp.ColorScale.Bins, format.Range),
		Sizes:     overlay.SizeEntries(scale),
		SizeTitle: "Weight",
		Note:      scale.Description,
	}

	return resp
}

// present компонует стек слоев над закодированным источником на новом стиле карты
// и применяет выделение. Заполняет Layers и Selected ответа.
func (e *encoder) present(resp *dto.ChoroplethResponse, selected string, symbols bool) (*mapsurface.Style, error) {
	opts := e.enc.ChoroplethOptions()
	if resp.Layers.KeyProperty != "" {
		opts.KeyProperty = resp.Layers.KeyProperty
	}
	opts.Symbols = symbols
	opts.Selected = selected

	style := mapsurface.NewStyle(e.mapCfg.StyleOptions())
	style.Initialize()

	desc, err := choropleth.ComposeLayers(style, SourceID, resp.Source, opts)
	if err != nil {
		return nil, fmt.Errorf("compose layers: %w", err)
	}
	if resp.Bounds != nil {
		style.FitBounds(resp.Bounds.Bound(), e.mapCfg.FitPadding)
	}

	resp.Layers = desc
	resp.Selected = selected
	return style, nil
}

// legendHTML выводит легенду отрисовки HTML-фрагментом
func legendHTML(resp *dto.ChoroplethResponse) ([]byte, error) {
	var buf bytes.Buffer
	if err := overlay.RenderLegend(&buf, resp.Legend); err != nil {
		return nil, fmt.Errorf("render legend: %w", err)
	}
	return buf.Bytes(), nil
}

// findIndicator загружает метаданные индикатора, отсутствие превращает в ErrIndicatorNotFound
func findIndicator(ctx context.Context, repo repository.IndicatorRepository, id string) (*domain.Indicator, error) {
	ind, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	if ind == nil {
		return nil, errors.ErrIndicatorNotFound.WithDetails(map[string]interface{}{"id": id})
	}
	return ind, nil
}

// noData собирает ErrNoData с перечнем периодов, за которые значения есть
func noData(ctx context.Context, repo repository.IndicatorRepository, indicatorID string, details map[string]interface{}) *errors.AppError {
	details["indicator"] = indicatorID
	if periods, err := repo.ListPeriods(ctx, indicatorID); err == nil && len(periods) > 0 {
		details["available_periods"] = periods
	}
	return errors.ErrNoData.WithDetails(details)
}

func indicatorInfo(ind domain.Indicator) dto.IndicatorInfo {
	return dto.IndicatorInfo{
		ID:       ind.ID,
		Name:     ind.Name,
		Unit:     ind.Unit,
		Polarity: ind.Polarity,
	}
}

func colorScaleInfo(div *colorscale.Divergent, values []float64) dto.ColorScaleInfo {
	return dto.ColorScaleInfo{
		Reference: div.Reference(),
		Domain:    div.Domain(),
		Midpoint:  colorscale.Hex(div.Midpoint()),
		NoData:    colorscale.Hex(div.NoData()),
		Bins:      div.Bins(values),
	}
}

func legendTitle(ind domain.Indicator) string {
	if ind.Unit == "" {
		return ind.Name
	}
	return fmt.Sprintf("%s (%s)", ind.Name, ind.Unit)
}

func countMatched(fc *geojson.FeatureCollection, valueProp string) int {
	n := 0
	for _, f := range fc.Features {
		if f.Properties[valueProp] != nil {
			n++
		}
	}
	return n
}
