package overlay

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/encoding/choropleth"
	"github.com/indicator-maps/internal/mapsurface"
)

const (
	cursorPointer = "pointer"
	cursorDefault = ""

	resetControlPosition = "top-right"
	resetControlTitle    = "Reset view"
)

// ContentFunc строит HTML подсказки по свойствам объекта
type ContentFunc func(props geojson.Properties) string

// ClickEvent - клик по территории
type ClickEvent struct {
	Key        string
	Properties geojson.Properties
	LngLat     orb.Point
}

// ClickHandler обрабатывает клик по территории
type ClickHandler func(ClickEvent)

// AttachTooltip показывает подсказку над объектом под указателем и скрывает ее при уходе
func AttachTooltip(surface mapsurface.Surface, layerID string, popups mapsurface.PopupFactory, content ContentFunc, log *zap.Logger) *Handle {
	log = named(log)
	if popups == nil || content == nil {
		log.Warn("Tooltip not attached: popup factory or content builder missing",
			zap.String("layer", layerID))
		return noop()
	}

	popup := popups()
	move := surface.On(mapsurface.EventMouseMove, layerID, func(ev mapsurface.Event) {
		if ev.Feature == nil {
			return
		}
		popup.SetLngLat(ev.LngLat)
		popup.SetHTML(content(ev.Feature.Properties))
		popup.Show()
		surface.SetCursor(cursorPointer)
	})
	leave := surface.On(mapsurface.EventMouseLeave, layerID, func(mapsurface.Event) {
		popup.Hide()
		surface.SetCursor(cursorDefault)
	})

	return newHandle(func() {
		off(surface, move, leave)
		popup.Hide()
		surface.SetCursor(cursorDefault)
	})
}

// AttachHighlight переключает фильтр слоя подсветки на объект под указателем
func AttachHighlight(surface mapsurface.Surface, triggerLayer, hoverLayer, keyProp string, log *zap.Logger) *Handle {
	log = named(log)

	setFilter := func(filter mapsurface.Filter) {
		if err := surface.SetFilter(hoverLayer, filter); err != nil {
			log.Warn("Failed to update hover filter",
				zap.String("layer", hoverLayer),
				zap.Error(err))
		}
	}

	if !surface.HasLayer(hoverLayer) {
		log.Warn("Highlight not attached: hover layer missing", zap.String("layer", hoverLayer))
		return noop()
	}

	move := surface.On(mapsurface.EventMouseMove, triggerLayer, func(ev mapsurface.Event) {
		key := choropleth.KeyOf(ev.Feature, keyProp)
		if key == "" {
			setFilter(mapsurface.MatchNothing())
			return
		}
		setFilter(mapsurface.Equals(keyProp, key))
	})
	leave := surface.On(mapsurface.EventMouseLeave, triggerLayer, func(mapsurface.Event) {
		setFilter(mapsurface.MatchNothing())
	})

	return newHandle(func() {
		off(surface, move, leave)
		setFilter(mapsurface.MatchNothing())
	})
}

// AttachClick вызывает обработчик с ключом, свойствами и координатами кликнутого объекта
func AttachClick(surface mapsurface.Surface, layerID, keyProp string, handler ClickHandler, log *zap.Logger) *Handle {
	log = named(log)
	if handler == nil {
		log.Warn("Click not attached: handler missing", zap.String("layer", layerID))
		return noop()
	}

	id := surface.On(mapsurface.EventClick, layerID, func(ev mapsurface.Event) {
		if ev.Feature == nil {
			return
		}
		handler(ClickEvent{
			Key:        choropleth.KeyOf(ev.Feature, keyProp),
			Properties: ev.Feature.Properties,
			LngLat:     ev.LngLat,
		})
	})

	return newHandle(func() {
		off(surface, id)
	})
}

// AttachResetControl добавляет элемент управления, возвращающий камеру к охвату
func AttachResetControl(surface mapsurface.Surface, bounds *orb.Bound, padding float64, log *zap.Logger) *Handle {
	log = named(log)
	if bounds == nil {
		log.Warn("Reset control not attached: bounds missing")
		return noop()
	}

	target := *bounds
	id := surface.AddControl(mapsurface.Control{
		Position: resetControlPosition,
		Title:    resetControlTitle,
		OnActivate: func() {
			surface.FitBounds(target, padding)
		},
	})

	return newHandle(func() {
		surface.RemoveControl(id)
	})
}

// BindOptions - набор поведения для стандартного стека слоев
type BindOptions struct {
	Popups  mapsurface.PopupFactory
	Content ContentFunc
	OnClick ClickHandler
	Bounds  *orb.Bound
	Padding float64
}

// Bind подключает подсказку, подсветку, клик и сброс вида к стеку слоев.
// Вызывающий освобождает группу целиком.
func Bind(surface mapsurface.Surface, desc choropleth.LayerDescriptor, opts BindOptions, log *zap.Logger) *Group {
	g := &Group{}
	g.Add(AttachHighlight(surface, desc.Fill, desc.Hover, desc.KeyProperty, log))
	if opts.Content != nil {
		g.Add(AttachTooltip(surface, desc.Fill, opts.Popups, opts.Content, log))
	}
	if opts.OnClick != nil {
		g.Add(AttachClick(surface, desc.Fill, desc.KeyProperty, opts.OnClick, log))
	}
	if opts.Bounds != nil {
		g.Add(AttachResetControl(surface, opts.Bounds, opts.Padding, log))
	}
	return g
}

func off(surface mapsurface.Surface, ids ...uuid.UUID) {
	for _, id := range ids {
		surface.Off(id)
	}
}

func named(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.Named("overlay")
}
