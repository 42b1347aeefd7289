package overlay

import (
	"fmt"
	"html/template"
	"io"

	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/encoding/trend"
)

// ColorEntry - цветная плашка легенды
type ColorEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SizeEntry - кружок легенды размеров
type SizeEntry struct {
	Radius    float64 `json:"radius"`
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	IsOutlier bool    `json:"is_outlier"`
}

// Legend - содержимое легенды карты
type Legend struct {
	Title     string       `json:"title"`
	Colors    []ColorEntry `json:"colors,omitempty"`
	Sizes     []SizeEntry  `json:"sizes,omitempty"`
	SizeTitle string       `json:"size_title,omitempty"`
	Note      string       `json:"note,omitempty"`
}

// ColorEntries строит плашки по интервалам цветовой шкалы
func ColorEntries(bins []colorscale.ColorBin, label func(min, max float64) string) []ColorEntry {
	out := make([]ColorEntry, 0, len(bins))
	for _, b := range bins {
		out = append(out, ColorEntry{
			Color: b.Color,
			Label: label(b.Min, b.Max),
			Count: b.Count,
		})
	}
	return out
}

// SizeEntries строит кружки по шкале размеров
func SizeEntries(scale *sizescale.Scale) []SizeEntry {
	legend := scale.Legend()
	out := make([]SizeEntry, 0, len(legend))
	for _, e := range legend {
		count := e.Count
		if scale.NoData {
			// заглушку "нет данных" показываем всегда
			count = 1
		}
		out = append(out, SizeEntry{
			Radius:    e.Radius,
			Label:     e.Label,
			Count:     count,
			IsOutlier: e.IsOutlier,
		})
	}
	return out
}

// TrendEntries строит плашки категорий тренда в порядке отображения
func TrendEntries(summary map[trend.Category]int) []ColorEntry {
	out := make([]ColorEntry, 0, len(trend.Categories))
	for _, c := range trend.Categories {
		out = append(out, ColorEntry{
			Color: c.Color(),
			Label: c.Label(),
			Count: summary[c],
		})
	}
	return out
}

var legendTemplate = template.Must(template.New("legend").Funcs(template.FuncMap{
	"diameter": func(r float64) string { return fmt.Sprintf("%.1f", 2*r) },
}).Parse(`<div class="map-legend">
{{- if .Title}}
  <div class="map-legend__title">{{.Title}}</div>
{{- end}}
{{- range .Colors}}
  <div class="map-legend__row">
    <span class="map-legend__swatch" style="background-color: {{.Color}}"></span>
    <span class="map-legend__label">{{.Label}}</span>
    <span class="map-legend__count">{{.Count}}</span>
  </div>
{{- end}}
{{- if .Sizes}}
{{- if .SizeTitle}}
  <div class="map-legend__title">{{.SizeTitle}}</div>
{{- end}}
{{- range .Sizes}}
  <div class="map-legend__row{{if .IsOutlier}} map-legend__row--outlier{{end}}">
    <span class="map-legend__circle" style="width: {{diameter .Radius}}px; height: {{diameter .Radius}}px"></span>
    <span class="map-legend__label">{{.Label}}</span>
    <span class="map-legend__count">{{.Count}}</span>
  </div>
{{- end}}
{{- end}}
{{- if .Note}}
  <div class="map-legend__note">{{.Note}}</div>
{{- end}}
</div>
`))

// RenderLegend выводит легенду HTML-фрагментом. Записи без объектов не показываются,
// но остаются в исходных массивах.
func RenderLegend(w io.Writer, legend Legend) error {
	visible := Legend{
		Title:     legend.Title,
		SizeTitle: legend.SizeTitle,
		Note:      legend.Note,
	}
	for _, e := range legend.Colors {
		if e.Count > 0 {
			visible.Colors = append(visible.Colors, e)
		}
	}
	for _, e := range legend.Sizes {
		if e.Count > 0 {
			visible.Sizes = append(visible.Sizes, e)
		}
	}
	if err := legendTemplate.Execute(w, visible); err != nil {
		return fmt.Errorf("render legend: %w", err)
	}
	return nil
}
