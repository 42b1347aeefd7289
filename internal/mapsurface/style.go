package mapsurface

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	styleVersion      = 8
	backgroundLayerID = "background"
	defaultBackground = "#f8f8f8"
)

// StyleOptions - параметры базового стиля
type StyleOptions struct {
	Name       string
	Glyphs     string
	Background string
	Center     orb.Point
	Zoom       float64
}

type listener struct {
	event   EventType
	layerID string
	fn      Listener
}

// Style - реализация Surface в памяти: фиксирует состояние карты и сериализуется
// в документ стиля MapLibre.
type Style struct {
	mu sync.RWMutex

	opts        StyleOptions
	initialized bool

	sources    map[string]*geojson.FeatureCollection
	sourceIDs  []string
	layers     []Layer
	layerIndex map[string]int

	listeners     map[uuid.UUID]listener
	listenerOrder []uuid.UUID

	controls     map[uuid.UUID]Control
	controlOrder []uuid.UUID

	cursor string
	camera Camera
	popups []*MemoryPopup
}

// NewStyle создает пустой стиль
func NewStyle(opts StyleOptions) *Style {
	if opts.Background == "" {
		opts.Background = defaultBackground
	}
	return &Style{
		opts:       opts,
		sources:    make(map[string]*geojson.FeatureCollection),
		layerIndex: make(map[string]int),
		listeners:  make(map[uuid.UUID]listener),
		controls:   make(map[uuid.UUID]Control),
		camera:     Camera{Center: opts.Center, Zoom: opts.Zoom},
	}
}

// Initialize добавляет фоновый слой один раз. Повторные вызовы ничего не меняют;
// возвращает true, если инициализация выполнена этим вызовом.
func (s *Style) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return false
	}
	if _, ok := s.layerIndex[backgroundLayerID]; !ok {
		s.insertLayer(Layer{
			ID:    backgroundLayerID,
			Type:  LayerBackground,
			Paint: map[string]any{"background-color": s.opts.Background},
		})
	}
	s.initialized = true
	return true
}

func (s *Style) HasSource(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[id]
	return ok
}

func (s *Style) AddSource(id string, data *geojson.FeatureCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSrc, id)
	}
	s.sources[id] = data
	s.sourceIDs = append(s.sourceIDs, id)
	return nil
}

func (s *Style) SetSourceData(id string, data *geojson.FeatureCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	s.sources[id] = data
	return nil
}

// RemoveSource удаляет источник, на который не ссылается ни один слой
func (s *Style) RemoveSource(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	for _, layer := range s.layers {
		if layer.Source == id {
			return fmt.Errorf("%w: %s (%s)", ErrSourceInUse, id, layer.ID)
		}
	}
	delete(s.sources, id)
	for i, sid := range s.sourceIDs {
		if sid == id {
			s.sourceIDs = append(s.sourceIDs[:i], s.sourceIDs[i+1:]...)
			break
		}
	}
	return nil
}

// SourceData возвращает данные источника
func (s *Style) SourceData(id string) (*geojson.FeatureCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.sources[id]
	return fc, ok
}

func (s *Style) HasLayer(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.layerIndex[id]
	return ok
}

func (s *Style) AddLayer(layer Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layerIndex[layer.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLayer, layer.ID)
	}
	if layer.Source != "" {
		if _, ok := s.sources[layer.Source]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSource, layer.Source)
		}
	}
	s.insertLayer(layer)
	return nil
}

func (s *Style) insertLayer(layer Layer) {
	s.layerIndex[layer.ID] = len(s.layers)
	s.layers = append(s.layers, layer)
}

// RemoveLayer удаляет слой, сохраняя порядок остальных
func (s *Style) RemoveLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.layerIndex[id]
	if !ok {
		return false
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	delete(s.layerIndex, id)
	for j := i; j < len(s.layers); j++ {
		s.layerIndex[s.layers[j].ID] = j
	}
	return true
}

// Layers возвращает копию списка слоев в порядке отрисовки
func (s *Style) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Layer возвращает слой по идентификатору
func (s *Style) Layer(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.layerIndex[id]
	if !ok {
		return Layer{}, false
	}
	return s.layers[i], true
}

func (s *Style) SetFilter(layerID string, filter Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.layerIndex[layerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, layerID)
	}
	s.layers[i].Filter = filter
	return nil
}

func (s *Style) Filter(layerID string) (Filter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.layerIndex[layerID]
	if !ok {
		return nil, false
	}
	return s.layers[i].Filter, true
}

// Matches проверяет, проходит ли объект фильтр слоя.
// Вычисляются выражения ==, get и to-string; сравнение строго типизировано.
func (s *Style) Matches(layerID string, f *geojson.Feature) bool {
	filter, ok := s.Filter(layerID)
	if !ok {
		return false
	}
	if len(filter) == 0 {
		return true
	}
	if f == nil {
		return false
	}
	result, _ := evaluate(filter, f.Properties).(bool)
	return result
}

func evaluate(expr any, props geojson.Properties) any {
	var e []any
	switch x := expr.(type) {
	case Filter:
		e = x
	case []any:
		e = x
	default:
		return normalize(expr)
	}
	if len(e) == 0 {
		return nil
	}
	op, _ := e[0].(string)
	switch {
	case op == "get" && len(e) == 2:
		name, _ := e[1].(string)
		return normalize(props[name])
	case op == "to-string" && len(e) == 2:
		return stringify(evaluate(e[1], props))
	case op == "==" && len(e) == 3:
		return strictEqual(evaluate(e[1], props), evaluate(e[2], props))
	default:
		return nil
	}
}

// normalize приводит числа к float64, как после декодирования JSON
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	default:
		return v
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	default:
		return false
	}
}

func (s *Style) On(event EventType, layerID string, fn Listener) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.listeners[id] = listener{event: event, layerID: layerID, fn: fn}
	s.listenerOrder = append(s.listenerOrder, id)
	return id
}

func (s *Style) Off(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listeners[id]; !ok {
		return false
	}
	delete(s.listeners, id)
	for i, lid := range s.listenerOrder {
		if lid == id {
			s.listenerOrder = append(s.listenerOrder[:i], s.listenerOrder[i+1:]...)
			break
		}
	}
	return true
}

// ListenerCount возвращает число зарегистрированных обработчиков
func (s *Style) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// Dispatch вызывает обработчики события по порядку регистрации и возвращает их число.
// Обработчики выполняются вне блокировки и могут менять состояние карты.
func (s *Style) Dispatch(ev Event) int {
	s.mu.RLock()
	var fns []Listener
	for _, id := range s.listenerOrder {
		l := s.listeners[id]
		if l.event == ev.Type && l.layerID == ev.LayerID {
			fns = append(fns, l.fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

func (s *Style) SetCursor(cursor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = cursor
}

// Cursor возвращает текущий курсор
func (s *Style) Cursor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

func (s *Style) AddControl(control Control) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if control.ID == uuid.Nil {
		control.ID = uuid.New()
	}
	if _, ok := s.controls[control.ID]; !ok {
		s.controlOrder = append(s.controlOrder, control.ID)
	}
	s.controls[control.ID] = control
	return control.ID
}

func (s *Style) RemoveControl(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.controls[id]; !ok {
		return false
	}
	delete(s.controls, id)
	for i, cid := range s.controlOrder {
		if cid == id {
			s.controlOrder = append(s.controlOrder[:i], s.controlOrder[i+1:]...)
			break
		}
	}
	return true
}

// Controls возвращает элементы управления в порядке добавления
func (s *Style) Controls() []Control {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Control, 0, len(s.controlOrder))
	for _, id := range s.controlOrder {
		out = append(out, s.controls[id])
	}
	return out
}

// ActivateControl имитирует нажатие на элемент управления
func (s *Style) ActivateControl(id uuid.UUID) bool {
	s.mu.RLock()
	c, ok := s.controls[id]
	s.mu.RUnlock()
	if !ok || c.OnActivate == nil {
		return false
	}
	c.OnActivate()
	return true
}

func (s *Style) FitBounds(bounds orb.Bound, padding float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := bounds
	s.camera.Bounds = &b
	s.camera.Center = bounds.Center()
	s.camera.Padding = padding
}

// Camera возвращает положение камеры
func (s *Style) Camera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// PopupFactory возвращает фабрику подсказок, которые запоминаются стилем
func (s *Style) PopupFactory() PopupFactory {
	return func() Popup {
		p := &MemoryPopup{}
		s.mu.Lock()
		s.popups = append(s.popups, p)
		s.mu.Unlock()
		return p
	}
}

// Popups возвращает созданные подсказки
func (s *Style) Popups() []*MemoryPopup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MemoryPopup, len(s.popups))
	copy(out, s.popups)
	return out
}

type styleSource struct {
	Type string                     `json:"type"`
	Data *geojson.FeatureCollection `json:"data"`
}

type styleDocument struct {
	Version int                    `json:"version"`
	Name    string                 `json:"name,omitempty"`
	Glyphs  string                 `json:"glyphs,omitempty"`
	Center  [2]float64             `json:"center"`
	Zoom    float64                `json:"zoom"`
	Sources map[string]styleSource `json:"sources"`
	Layers  []Layer                `json:"layers"`
}

// MarshalJSON сериализует стиль в документ MapLibre (version 8)
func (s *Style) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := styleDocument{
		Version: styleVersion,
		Name:    s.opts.Name,
		Glyphs:  s.opts.Glyphs,
		Center:  [2]float64{s.camera.Center.Lon(), s.camera.Center.Lat()},
		Zoom:    s.camera.Zoom,
		Sources: make(map[string]styleSource, len(s.sources)),
		Layers:  s.layers,
	}
	for _, id := range s.sourceIDs {
		data := s.sources[id]
		if data == nil {
			data = geojson.NewFeatureCollection()
		}
		doc.Sources[id] = styleSource{Type: "geojson", Data: data}
	}
	if doc.Layers == nil {
		doc.Layers = []Layer{}
	}
	return json.Marshal(doc)
}

// MemoryPopup - подсказка в памяти
type MemoryPopup struct {
	mu      sync.Mutex
	lngLat  orb.Point
	html    string
	visible bool
}

func (p *MemoryPopup) SetLngLat(pt orb.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lngLat = pt
}

func (p *MemoryPopup) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

func (p *MemoryPopup) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
}

func (p *MemoryPopup) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// State возвращает координаты, содержимое и видимость подсказки
func (p *MemoryPopup) State() (orb.Point, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lngLat, p.html, p.visible
}

var _ Surface = (*Style)(nil)
