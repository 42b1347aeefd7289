package choropleth

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/indicator-maps/internal/mapsurface"
)

// LayerDescriptor - идентификаторы стека слоев, построенного над одним источником
type LayerDescriptor struct {
	SourceID       string `json:"source_id"`
	Fill           string `json:"fill"`
	Border         string `json:"border"`
	Hover          string `json:"hover"`
	Selection      string `json:"selection"`
	Labels         string `json:"labels,omitempty"`
	SymbolSourceID string `json:"symbol_source_id,omitempty"`
	Symbols        string `json:"symbols,omitempty"`
	KeyProperty    string `json:"key_property"`
}

// LayerIDs возвращает идентификаторы созданных слоев в порядке отрисовки
func (d LayerDescriptor) LayerIDs() []string {
	ids := []string{d.Fill, d.Border, d.Hover, d.Selection}
	if d.Labels != "" {
		ids = append(ids, d.Labels)
	}
	if d.Symbols != "" {
		ids = append(ids, d.Symbols)
	}
	return ids
}

// NewDescriptor возвращает идентификаторы слоев для источника
func NewDescriptor(sourceID string, opts Options) LayerDescriptor {
	opts = opts.withDefaults()
	d := LayerDescriptor{
		SourceID:    sourceID,
		Fill:        sourceID + "-fill",
		Border:      sourceID + "-border",
		Hover:       sourceID + "-hover",
		Selection:   sourceID + "-selection",
		KeyProperty: opts.KeyProperty,
	}
	if opts.Labels {
		d.Labels = sourceID + "-labels"
	}
	if opts.Symbols {
		d.SymbolSourceID = sourceID + "-centroids"
		d.Symbols = sourceID + "-symbols"
	}
	return d
}

// ComposeLayers регистрирует источник и стек слоев: заливку, границы, подсветку,
// выделение и, опционально, подписи и пропорциональные символы. Повторный вызов
// обновляет данные источника и сбрасывает фильтры, не дублируя слои; подписи и
// символы, которые больше не запрошены, удаляются вместе с источником центроидов.
func ComposeLayers(surface mapsurface.Surface, sourceID string, fc *geojson.FeatureCollection, opts Options) (LayerDescriptor, error) {
	opts = opts.withDefaults()
	p := opts.Props
	desc := NewDescriptor(sourceID, opts)

	if err := upsertSource(surface, sourceID, fc); err != nil {
		return desc, err
	}

	layers := []mapsurface.Layer{
		{
			ID:     desc.Fill,
			Type:   mapsurface.LayerFill,
			Source: sourceID,
			Paint: map[string]any{
				"fill-color":   []any{"get", p.FillColor},
				"fill-opacity": opts.FillOpacity,
			},
		},
		{
			ID:     desc.Border,
			Type:   mapsurface.LayerLine,
			Source: sourceID,
			Paint: map[string]any{
				"line-color": opts.BorderColor,
				"line-width": opts.BorderWidth,
			},
		},
		{
			ID:     desc.Hover,
			Type:   mapsurface.LayerFill,
			Source: sourceID,
			Filter: mapsurface.MatchNothing(),
			Paint: map[string]any{
				"fill-color":   opts.HoverColor,
				"fill-opacity": opts.HoverOpacity,
			},
		},
		{
			ID:     desc.Selection,
			Type:   mapsurface.LayerLine,
			Source: sourceID,
			Filter: selectionFilter(opts.KeyProperty, opts.Selected),
			Paint: map[string]any{
				"line-color": opts.SelectionColor,
				"line-width": opts.SelectionWidth,
			},
		},
	}

	if opts.Labels {
		layers = append(layers, mapsurface.Layer{
			ID:      desc.Labels,
			Type:    mapsurface.LayerSymbol,
			Source:  sourceID,
			MinZoom: opts.LabelMinZoom,
			Layout: map[string]any{
				"text-field": []any{"get", p.Label},
				"text-size":  opts.LabelSize,
				// меньший ключ выигрывает при коллизии подписей
				"symbol-sort-key": []any{"-", 0, []any{"get", p.SizeWeight}},
			},
			Paint: map[string]any{
				"text-color":      "#222222",
				"text-halo-color": "#ffffff",
				"text-halo-width": 1.2,
			},
		})
	}

	if opts.Symbols {
		if err := upsertSource(surface, desc.SymbolSourceID, Centroids(fc)); err != nil {
			return desc, err
		}
		layers = append(layers, mapsurface.Layer{
			ID:     desc.Symbols,
			Type:   mapsurface.LayerCircle,
			Source: desc.SymbolSourceID,
			Layout: map[string]any{
				"circle-sort-key": []any{"-", 0, []any{"get", p.SizeWeight}},
			},
			Paint: map[string]any{
				"circle-color":        opts.SymbolFill,
				"circle-opacity":      0.7,
				"circle-radius":       []any{"get", p.SymbolRadius},
				"circle-stroke-color": []any{"get", p.SymbolStroke},
				"circle-stroke-width": []any{"get", p.SymbolStrokeWidth},
			},
		})
	}

	for _, layer := range layers {
		if surface.HasLayer(layer.ID) {
			if err := surface.SetFilter(layer.ID, layer.Filter); err != nil {
				return desc, fmt.Errorf("reset filter %s: %w", layer.ID, err)
			}
			continue
		}
		if err := surface.AddLayer(layer); err != nil {
			return desc, fmt.Errorf("add layer %s: %w", layer.ID, err)
		}
	}

	if err := dropOptionalLayers(surface, sourceID, opts); err != nil {
		return desc, err
	}

	return desc, nil
}

func dropOptionalLayers(surface mapsurface.Surface, sourceID string, opts Options) error {
	if !opts.Labels {
		surface.RemoveLayer(sourceID + "-labels")
	}
	if opts.Symbols {
		return nil
	}
	surface.RemoveLayer(sourceID + "-symbols")
	centroids := sourceID + "-centroids"
	if !surface.HasSource(centroids) {
		return nil
	}
	if err := surface.RemoveSource(centroids); err != nil {
		return fmt.Errorf("remove source %s: %w", centroids, err)
	}
	return nil
}

// Select обновляет только фильтр слоя выделения; пустой ключ снимает выделение
func Select(surface mapsurface.Surface, desc LayerDescriptor, key, keyProp string) error {
	if keyProp == "" {
		keyProp = desc.KeyProperty
	}
	if err := surface.SetFilter(desc.Selection, selectionFilter(keyProp, key)); err != nil {
		return fmt.Errorf("select %q: %w", key, err)
	}
	return nil
}

// Centroids возвращает точечную коллекцию центроидов полигонов с теми же свойствами
func Centroids(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		var center orb.Point
		switch g := f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			center, _ = planar.CentroidArea(g)
		default:
			continue
		}
		pt := geojson.NewFeature(center)
		pt.ID = f.ID
		pt.Properties = f.Properties.Clone()
		out.Append(pt)
	}
	return out
}

func upsertSource(surface mapsurface.Surface, id string, fc *geojson.FeatureCollection) error {
	if surface.HasSource(id) {
		if err := surface.SetSourceData(id, fc); err != nil {
			return fmt.Errorf("update source %s: %w", id, err)
		}
		return nil
	}
	if err := surface.AddSource(id, fc); err != nil {
		return fmt.Errorf("add source %s: %w", id, err)
	}
	return nil
}

func selectionFilter(keyProp, key string) mapsurface.Filter {
	if key == "" {
		return mapsurface.MatchNothing()
	}
	return mapsurface.Equals(keyProp, key)
}
