// Package choropleth соединяет значения индикатора с геометрией территорий
// и описывает стандартный стек интерактивных слоев карты.
package choropleth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/sizescale"
)

// ColorFunc возвращает цвет заливки для значения
type ColorFunc func(v float64) string

// BuildSource декорирует копии объектов цветом, значением, подписью и весом размера.
// Объект без строки данных получает цвет по умолчанию и пустые значения, но не отбрасывается.
func BuildSource(features []*geojson.Feature, dataByKey map[string]domain.IndicatorRow, valueColumn string, colorFn ColorFunc, opts Options) *geojson.FeatureCollection {
	opts = opts.withDefaults()
	p := opts.Props

	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(features))

	for _, src := range features {
		f := cloneFeature(src)
		key := KeyOf(f, opts.KeyProperty)
		row, joined := dataByKey[key]

		f.Properties[p.FillColor] = opts.DefaultFill
		f.Properties[p.Value] = nil
		f.Properties[p.ValueLabel] = nil

		if joined {
			if v, ok := row.Field(valueColumn); ok {
				f.Properties[p.Value] = v
				f.Properties[p.ValueLabel] = opts.ValueFormatter(v)
				if colorFn != nil {
					if c := colorFn(v); c != "" {
						f.Properties[p.FillColor] = c
					}
				}
			}
		}

		f.Properties[p.Label] = displayLabel(f, row, joined, key, opts)
		f.Properties[p.SizeWeight] = sizeWeight(f, row, joined, opts)

		fc.Append(f)
	}

	return fc
}

// ApplySizeScale добавляет объектам радиус и обводку пропорционального символа по весу размера
func ApplySizeScale(fc *geojson.FeatureCollection, scale *sizescale.Scale, opts Options) {
	if fc == nil || scale == nil {
		return
	}
	p := opts.withDefaults().Props

	for _, f := range fc.Features {
		w, ok := numeric(f.Properties[p.SizeWeight])
		if !ok {
			w = 0
		}
		f.Properties[p.SymbolRadius] = scale.Radius(w)
		f.Properties[p.SymbolStroke] = scale.Stroke(w)
		f.Properties[p.SymbolStrokeWidth] = scale.StrokeWidth(w)
	}
}

// SizeWeights возвращает веса размера декорированных объектов
func SizeWeights(fc *geojson.FeatureCollection, opts Options) []float64 {
	p := opts.withDefaults().Props
	out := make([]float64, 0, len(fc.Features))
	for _, f := range fc.Features {
		if w, ok := numeric(f.Properties[p.SizeWeight]); ok && w > 0 {
			out = append(out, w)
		}
	}
	return out
}

// KeyOf возвращает ключ соединения объекта в строковом виде
func KeyOf(f *geojson.Feature, property string) string {
	if f == nil {
		return ""
	}
	switch v := f.Properties[property].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func displayLabel(f *geojson.Feature, row domain.IndicatorRow, joined bool, key string, opts Options) string {
	if joined && row.Label != "" {
		return row.Label
	}
	if name, ok := f.Properties[opts.NameProperty].(string); ok && name != "" {
		return name
	}
	return key
}

func sizeWeight(f *geojson.Feature, row domain.IndicatorRow, joined bool, opts Options) float64 {
	if joined {
		for _, name := range opts.WeightFields {
			if v, ok := row.Field(name); ok {
				return v
			}
		}
	}
	for _, name := range opts.FeatureWeightProperties {
		if v, ok := numeric(f.Properties[name]); ok {
			return v
		}
	}
	return 0
}

func numeric(v any) (float64, bool) {
	var out float64
	switch n := v.(type) {
	case float64:
		out = n
	case float32:
		out = float64(n)
	case int:
		out = float64(n)
	case int64:
		out = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		out = f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		out = f
	default:
		return 0, false
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, false
	}
	return out, true
}

func cloneFeature(src *geojson.Feature) *geojson.Feature {
	if src == nil {
		return &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
	}
	f := &geojson.Feature{
		ID:         src.ID,
		Type:       src.Type,
		BBox:       src.BBox,
		Properties: src.Properties.Clone(),
	}
	if src.Geometry != nil {
		f.Geometry = orb.Clone(src.Geometry)
	}
	if f.Type == "" {
		f.Type = "Feature"
	}
	if f.Properties == nil {
		f.Properties = geojson.Properties{}
	}
	return f
}
