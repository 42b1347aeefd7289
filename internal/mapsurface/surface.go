// Package mapsurface описывает примитив карты, которым управляет слой кодирования:
// источники данных, слои, фильтры, обработчики событий, элементы управления и камера.
package mapsurface

import (
	"errors"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrUnknownSource  = errors.New("unknown source")
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrDuplicateLayer = errors.New("layer already exists")
	ErrDuplicateSrc   = errors.New("source already exists")
	ErrSourceInUse    = errors.New("source is used by a layer")
)

// LayerType - тип слоя стиля MapLibre
type LayerType string

const (
	LayerBackground LayerType = "background"
	LayerFill       LayerType = "fill"
	LayerLine       LayerType = "line"
	LayerSymbol     LayerType = "symbol"
	LayerCircle     LayerType = "circle"
)

// EventType - тип событий указателя
type EventType string

const (
	EventMouseMove  EventType = "mousemove"
	EventMouseLeave EventType = "mouseleave"
	EventClick      EventType = "click"
)

// Filter - выражение фильтра MapLibre
type Filter []any

// Layer - описание слоя стиля
type Layer struct {
	ID      string         `json:"id"`
	Type    LayerType      `json:"type"`
	Source  string         `json:"source,omitempty"`
	Filter  Filter         `json:"filter,omitempty"`
	MinZoom float64        `json:"minzoom,omitempty"`
	Paint   map[string]any `json:"paint,omitempty"`
	Layout  map[string]any `json:"layout,omitempty"`
}

// Event - событие указателя над слоем
type Event struct {
	Type    EventType
	LayerID string
	Feature *geojson.Feature
	LngLat  orb.Point
}

// Listener - обработчик события
type Listener func(Event)

// Control - элемент управления на карте
type Control struct {
	ID         uuid.UUID `json:"id"`
	Position   string    `json:"position"`
	Title      string    `json:"title"`
	OnActivate func()    `json:"-"`
}

// Camera - текущее положение камеры
type Camera struct {
	Center  orb.Point  `json:"center"`
	Zoom    float64    `json:"zoom"`
	Bounds  *orb.Bound `json:"bounds,omitempty"`
	Padding float64    `json:"padding,omitempty"`
}

// Surface - примитив карты, которым управляют компоновщик слоев и интерактивные мосты
type Surface interface {
	HasSource(id string) bool
	AddSource(id string, data *geojson.FeatureCollection) error
	SetSourceData(id string, data *geojson.FeatureCollection) error
	RemoveSource(id string) error

	HasLayer(id string) bool
	AddLayer(layer Layer) error
	RemoveLayer(id string) bool
	SetFilter(layerID string, filter Filter) error
	Filter(layerID string) (Filter, bool)

	On(event EventType, layerID string, fn Listener) uuid.UUID
	Off(id uuid.UUID) bool

	SetCursor(cursor string)
	AddControl(control Control) uuid.UUID
	RemoveControl(id uuid.UUID) bool
	FitBounds(bounds orb.Bound, padding float64)
}

// Popup - всплывающая подсказка
type Popup interface {
	SetLngLat(p orb.Point)
	SetHTML(html string)
	Show()
	Hide()
}

// PopupFactory создает подсказки для карты
type PopupFactory func() Popup

// Equals возвращает фильтр совпадения свойства со значением.
// == строго типизировано, поэтому свойство приводится к строке (числовые коды).
func Equals(property, value string) Filter {
	return Filter{"==", Filter{"to-string", Filter{"get", property}}, value}
}

// MatchNothing возвращает фильтр, которому не соответствует ни один объект
func MatchNothing() Filter {
	return Filter{"==", 1, 0}
}
