package dto

import (
	"github.com/paulmach/orb/geojson"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/choropleth"
	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/overlay"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/encoding/trend"
)

// IndicatorInfo - метаданные индикатора в ответе
type IndicatorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Polarity int    `json:"polarity"`
}

// ColorScaleInfo - описание расходящейся шкалы
type ColorScaleInfo struct {
	Reference float64               `json:"reference"`
	Domain    [6]float64            `json:"domain"`
	Midpoint  string                `json:"midpoint"`
	NoData    string                `json:"no_data"`
	Bins      []colorscale.ColorBin `json:"bins"`
}

// ChoroplethResponse - закодированная карта: обогащенный источник, стек слоев, границы и легенды
type ChoroplethResponse struct {
	Indicator  IndicatorInfo              `json:"indicator"`
	Period     string                     `json:"period,omitempty"`
	Level      string                     `json:"level,omitempty"`
	Locale     string                     `json:"locale"`
	Source     *geojson.FeatureCollection `json:"source"`
	Layers     choropleth.LayerDescriptor `json:"layers"`
	Bounds     *domain.BoundingBox        `json:"bounds,omitempty"`
	Center     domain.Point               `json:"center"`
	ColorScale ColorScaleInfo             `json:"color_scale"`
	SizeScale  *sizescale.Scale           `json:"size_scale"`
	Legend     overlay.Legend             `json:"legend"`
	Selected   string                     `json:"selected,omitempty"`
	Matched    int                        `json:"matched"`

	// Cached - отрисовка прочитана из кеша
	Cached bool `json:"-"`
}

// ChartMark - метка диаграммы для одной территории
type ChartMark struct {
	Code        string   `json:"code"`
	Label       string   `json:"label"`
	Value       *float64 `json:"value"`
	ValueLabel  string   `json:"value_label"`
	Deviation   *float64 `json:"deviation"`
	Color       string   `json:"color"`
	Weight      *float64 `json:"weight,omitempty"`
	Radius      float64  `json:"radius"`
	Stroke      string   `json:"stroke"`
	StrokeWidth float64  `json:"stroke_width"`
	IsOutlier   bool     `json:"is_outlier"`
}

// ChartResponse - метки диаграммы с общими шкалами
type ChartResponse struct {
	Indicator  IndicatorInfo    `json:"indicator"`
	Period     string           `json:"period"`
	Level      string           `json:"level"`
	Marks      []ChartMark      `json:"marks"`
	ColorScale ColorScaleInfo   `json:"color_scale"`
	SizeScale  *sizescale.Scale `json:"size_scale"`
}

// TrendItem - категория динамики для одной территории
type TrendItem struct {
	Code          string         `json:"code"`
	Label         string         `json:"label,omitempty"`
	From          *float64       `json:"from"`
	To            *float64       `json:"to"`
	Category      trend.Category `json:"category"`
	CategoryLabel string         `json:"category_label"`
	Color         string         `json:"color"`
}

// TrendResponse - результат классификации динамики
type TrendResponse struct {
	Indicator *IndicatorInfo         `json:"indicator,omitempty"`
	From      string                 `json:"from,omitempty"`
	To        string                 `json:"to,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Items     []TrendItem            `json:"items"`
	Summary   map[trend.Category]int `json:"summary"`
	Legend    []overlay.ColorEntry   `json:"legend"`
}

// SizesResponse - шкала размеров с легендой
type SizesResponse struct {
	Scale  *sizescale.Scale `json:"scale"`
	Legend overlay.Legend   `json:"legend"`
}

// HealthResponse - ответ проверки здоровья сервиса
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
