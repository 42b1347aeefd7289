package config

import (
	"github.com/paulmach/orb"

	"github.com/indicator-maps/internal/encoding/choropleth"
	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/encoding/trend"
	"github.com/indicator-maps/internal/mapsurface"
)

// TrendConfig возвращает параметры классификатора тренда
func (e EncodingConfig) TrendConfig() trend.Config {
	return trend.Config{NoiseRatio: e.NoiseRatio}
}

// ColorConfig возвращает параметры расходящейся шкалы. Палитра применяется только целиком (8 цветов).
func (e EncodingConfig) ColorConfig() colorscale.Config {
	cfg := colorscale.DefaultConfig()
	if len(e.Palette) == len(cfg.Palette) {
		copy(cfg.Palette[:], e.Palette)
	}
	if e.NoDataColor != "" {
		cfg.NoDataColor = e.NoDataColor
	}
	return cfg
}

// SizeOptions возвращает параметры шкалы размеров
func (e EncodingConfig) SizeOptions() sizescale.Options {
	opts := sizescale.DefaultOptions()
	opts.Bins = e.SizeBins
	opts.RadiusMin = e.RadiusMin
	opts.RadiusMax = e.RadiusMax
	opts.OutlierMultiplier = e.OutlierMultiplier
	opts.MaxOutlierPct = e.MaxOutlierPct
	opts.MinOutlierCount = e.MinOutlierCount
	return opts
}

// ChoroplethOptions возвращает параметры компоновки слоев
func (e EncodingConfig) ChoroplethOptions() choropleth.Options {
	opts := choropleth.DefaultOptions()
	if e.DefaultFill != "" {
		opts.DefaultFill = e.DefaultFill
	}
	opts.LabelMinZoom = e.LabelMinZoom
	return opts
}

// Center возвращает центр карты по умолчанию
func (m MapConfig) Center() orb.Point {
	return orb.Point{m.CenterLon, m.CenterLat}
}

// StyleOptions возвращает параметры базового стиля
func (m MapConfig) StyleOptions() mapsurface.StyleOptions {
	return mapsurface.StyleOptions{
		Name:   m.StyleName,
		Glyphs: m.Glyphs,
		Center: m.Center(),
		Zoom:   m.Zoom,
	}
}
