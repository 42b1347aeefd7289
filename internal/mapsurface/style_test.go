package mapsurface

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeature(code string) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{1, 2})
	f.Properties["code"] = code
	return f
}

func TestStyle_InitializeOnce(t *testing.T) {
	s := NewStyle(StyleOptions{Name: "test"})

	assert.True(t, s.Initialize())
	assert.False(t, s.Initialize())
	assert.False(t, s.Initialize())

	layers := s.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, LayerBackground, layers[0].Type)
}

func TestStyle_SourcesAndLayers(t *testing.T) {
	s := NewStyle(StyleOptions{})
	fc := geojson.NewFeatureCollection()

	require.NoError(t, s.AddSource("zones", fc))
	assert.ErrorIs(t, s.AddSource("zones", fc), ErrDuplicateSrc)
	assert.ErrorIs(t, s.SetSourceData("missing", fc), ErrUnknownSource)

	assert.ErrorIs(t, s.AddLayer(Layer{ID: "fill", Type: LayerFill, Source: "missing"}), ErrUnknownSource)
	require.NoError(t, s.AddLayer(Layer{ID: "fill", Type: LayerFill, Source: "zones"}))
	assert.ErrorIs(t, s.AddLayer(Layer{ID: "fill", Type: LayerFill, Source: "zones"}), ErrDuplicateLayer)
	assert.True(t, s.HasLayer("fill"))
	assert.False(t, s.HasLayer("border"))

	assert.ErrorIs(t, s.SetFilter("border", nil), ErrUnknownLayer)
}

func TestStyle_FilterMatching(t *testing.T) {
	s := NewStyle(StyleOptions{})
	require.NoError(t, s.AddSource("zones", geojson.NewFeatureCollection()))
	require.NoError(t, s.AddLayer(Layer{ID: "hover", Type: LayerFill, Source: "zones", Filter: MatchNothing()}))

	a, b := newFeature("A"), newFeature("B")
	assert.False(t, s.Matches("hover", a))
	assert.False(t, s.Matches("hover", b))

	require.NoError(t, s.SetFilter("hover", Equals("code", "A")))
	assert.True(t, s.Matches("hover", a))
	assert.False(t, s.Matches("hover", b))

	require.NoError(t, s.SetFilter("hover", nil))
	assert.True(t, s.Matches("hover", b))
	assert.False(t, s.Matches("unknown", b))
}

func TestStyle_FilterStrictTyping(t *testing.T) {
	s := NewStyle(StyleOptions{})
	require.NoError(t, s.AddSource("zones", geojson.NewFeatureCollection()))
	require.NoError(t, s.AddLayer(Layer{ID: "sel", Type: LayerLine, Source: "zones", Filter: Equals("code", "75")}))

	numeric := geojson.NewFeature(orb.Point{1, 2})
	numeric.Properties["code"] = 75.0
	missing := geojson.NewFeature(orb.Point{1, 2})

	assert.True(t, s.Matches("sel", numeric), "to-string makes numeric codes comparable")
	assert.False(t, s.Matches("sel", missing))

	require.NoError(t, s.SetFilter("sel", Filter{"==", Filter{"get", "code"}, "75"}))
	assert.False(t, s.Matches("sel", numeric), "plain get compares with strict typing")

	require.NoError(t, s.SetFilter("sel", MatchNothing()))
	assert.False(t, s.Matches("sel", numeric))
	assert.False(t, s.Matches("sel", missing), "a feature without the key does not match")
	assert.False(t, s.Matches("sel", newFeature("")))
}

func TestStyle_RemoveLayerAndSource(t *testing.T) {
	s := NewStyle(StyleOptions{})
	require.NoError(t, s.AddSource("zones", geojson.NewFeatureCollection()))
	require.NoError(t, s.AddLayer(Layer{ID: "fill", Type: LayerFill, Source: "zones"}))
	require.NoError(t, s.AddLayer(Layer{ID: "border", Type: LayerLine, Source: "zones"}))
	require.NoError(t, s.AddLayer(Layer{ID: "hover", Type: LayerFill, Source: "zones"}))

	assert.ErrorIs(t, s.RemoveSource("zones"), ErrSourceInUse)
	assert.ErrorIs(t, s.RemoveSource("missing"), ErrUnknownSource)

	assert.True(t, s.RemoveLayer("border"))
	assert.False(t, s.RemoveLayer("border"))
	require.NoError(t, s.SetFilter("hover", MatchNothing()), "index survives removal")

	ids := make([]string, 0)
	for _, l := range s.Layers() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"fill", "hover"}, ids)

	assert.True(t, s.RemoveLayer("fill"))
	assert.True(t, s.RemoveLayer("hover"))
	require.NoError(t, s.RemoveSource("zones"))
	assert.False(t, s.HasSource("zones"))
}

func TestStyle_ListenersDispatch(t *testing.T) {
	s := NewStyle(StyleOptions{})

	var calls []string
	first := s.On(EventMouseMove, "fill", func(Event) { calls = append(calls, "first") })
	s.On(EventMouseMove, "fill", func(Event) { calls = append(calls, "second") })
	s.On(EventClick, "fill", func(Event) { calls = append(calls, "click") })

	assert.Equal(t, 2, s.Dispatch(Event{Type: EventMouseMove, LayerID: "fill"}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 0, s.Dispatch(Event{Type: EventMouseMove, LayerID: "other"}))

	assert.True(t, s.Off(first))
	assert.False(t, s.Off(first))
	assert.False(t, s.Off(uuid.New()))
	assert.Equal(t, 2, s.ListenerCount())

	calls = nil
	assert.Equal(t, 1, s.Dispatch(Event{Type: EventMouseMove, LayerID: "fill"}))
	assert.Equal(t, []string{"second"}, calls)
}

func TestStyle_ControlsAndCamera(t *testing.T) {
	s := NewStyle(StyleOptions{Center: orb.Point{2.4, 46.6}, Zoom: 5})

	activated := 0
	id := s.AddControl(Control{Position: "top-right", Title: "reset", OnActivate: func() { activated++ }})
	require.Len(t, s.Controls(), 1)

	assert.True(t, s.ActivateControl(id))
	assert.Equal(t, 1, activated)
	assert.True(t, s.RemoveControl(id))
	assert.False(t, s.RemoveControl(id))
	assert.False(t, s.ActivateControl(id))

	assert.Equal(t, orb.Point{2.4, 46.6}, s.Camera().Center)
	s.FitBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 20}}, 16)
	cam := s.Camera()
	require.NotNil(t, cam.Bounds)
	assert.Equal(t, orb.Point{5, 10}, cam.Center)
	assert.Equal(t, 16.0, cam.Padding)
}

func TestStyle_Popups(t *testing.T) {
	s := NewStyle(StyleOptions{})
	p := s.PopupFactory()()

	p.SetLngLat(orb.Point{3, 4})
	p.SetHTML("<b>A</b>")
	p.Show()

	popups := s.Popups()
	require.Len(t, popups, 1)
	at, html, visible := popups[0].State()
	assert.Equal(t, orb.Point{3, 4}, at)
	assert.Equal(t, "<b>A</b>", html)
	assert.True(t, visible)

	p.Hide()
	_, _, visible = popups[0].State()
	assert.False(t, visible)
}

func TestStyle_MarshalJSON(t *testing.T) {
	s := NewStyle(StyleOptions{Name: "indicator", Center: orb.Point{2.4, 46.6}, Zoom: 5})
	s.Initialize()

	fc := geojson.NewFeatureCollection()
	fc.Append(newFeature("A"))
	require.NoError(t, s.AddSource("zones", fc))
	require.NoError(t, s.AddLayer(Layer{
		ID:     "zones-fill",
		Type:   LayerFill,
		Source: "zones",
		Paint:  map[string]any{"fill-color": []any{"get", "fill_color"}},
	}))

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var doc struct {
		Version int        `json:"version"`
		Name    string     `json:"name"`
		Center  [2]float64 `json:"center"`
		Sources map[string]struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"sources"`
		Layers []Layer `json:"layers"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, 8, doc.Version)
	assert.Equal(t, "indicator", doc.Name)
	assert.Equal(t, [2]float64{2.4, 46.6}, doc.Center)
	require.Contains(t, doc.Sources, "zones")
	assert.Equal(t, "geojson", doc.Sources["zones"].Type)
	assert.Contains(t, string(doc.Sources["zones"].Data), `"code":"A"`)
	require.Len(t, doc.Layers, 2)
	assert.Equal(t, "background", doc.Layers[0].ID)
	assert.Equal(t, "zones-fill", doc.Layers[1].ID)
}
