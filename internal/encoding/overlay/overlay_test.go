package overlay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/indicator-maps/internal/encoding/choropleth"
	"github.com/indicator-maps/internal/encoding/colorscale"
	"github.com/indicator-maps/internal/encoding/sizescale"
	"github.com/indicator-maps/internal/encoding/trend"
	"github.com/indicator-maps/internal/mapsurface"
)

func composed(t *testing.T) (*mapsurface.Style, choropleth.LayerDescriptor, []*geojson.Feature) {
	t.Helper()

	features := []*geojson.Feature{
		geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}),
		geojson.NewFeature(orb.Polygon{{{1, 0}, {2, 0}, {2, 1}, {1, 0}}}),
	}
	features[0].Properties["code"] = "A"
	features[0].Properties["name"] = "Alpha"
	features[1].Properties["code"] = "B"

	style := mapsurface.NewStyle(mapsurface.StyleOptions{})
	fc := choropleth.BuildSource(features, nil, "value", nil, choropleth.DefaultOptions())
	desc, err := choropleth.ComposeLayers(style, "zones", fc, choropleth.DefaultOptions())
	require.NoError(t, err)
	return style, desc, fc.Features
}

func TestAttachHighlight(t *testing.T) {
	style, desc, features := composed(t)

	h := AttachHighlight(style, desc.Fill, desc.Hover, "code", zap.NewNop())
	assert.Equal(t, 2, style.ListenerCount())

	style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseMove, LayerID: desc.Fill, Feature: features[0]})
	assert.True(t, style.Matches(desc.Hover, features[0]))
	assert.False(t, style.Matches(desc.Hover, features[1]))

	style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseMove, LayerID: desc.Fill, Feature: features[1]})
	assert.True(t, style.Matches(desc.Hover, features[1]))

	style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseLeave, LayerID: desc.Fill})
	assert.False(t, style.Matches(desc.Hover, features[0]))
	assert.False(t, style.Matches(desc.Hover, features[1]))

	h.Release()
	assert.Equal(t, 0, style.ListenerCount())
	assert.Equal(t, 0, style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseMove, LayerID: desc.Fill, Feature: features[0]}))
}

func TestRelease_Idempotent(t *testing.T) {
	style, desc, features := composed(t)

	h := AttachHighlight(style, desc.Fill, desc.Hover, "code", nil)
	style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseMove, LayerID: desc.Fill, Feature: features[0]})
	h.Release()

	filterAfterFirst, _ := style.Filter(desc.Hover)

	// another behaviour mutates the filter after release
	require.NoError(t, style.SetFilter(desc.Hover, mapsurface.Equals("code", "B")))
	other := AttachClick(style, desc.Fill, "code", func(ClickEvent) {}, nil)

	assert.NotPanics(t, h.Release)
	filterAfterSecond, _ := style.Filter(desc.Hover)
	assert.Equal(t, mapsurface.MatchNothing(), filterAfterFirst)
	assert.Equal(t, mapsurface.Equals("code", "B"), filterAfterSecond, "second release must not touch filters")
	assert.Equal(t, 1, style.ListenerCount(), "second release must not remove other listeners")

	other.Release()
	var nilHandle *Handle
	assert.NotPanics(t, nilHandle.Release)
}

func TestAttachTooltip(t *testing.T) {
	style, desc, features := composed(t)

	h := AttachTooltip(style, desc.Fill, style.PopupFactory(), func(p geojson.Properties) string {
		return "<b>" + p.MustString("label", "") + "</b>"
	}, zap.NewNop())
	require.Len(t, style.Popups(), 1)
	popup := style.Popups()[0]

	style.Dispatch(mapsurface.Event{
		Type:    mapsurface.EventMouseMove,
		LayerID: desc.Fill,
		Feature: features[0],
		LngLat:  orb.Point{0.5, 0.2},
	})
	at, html, visible := popup.State()
	assert.True(t, visible)
	assert.Equal(t, "<b>Alpha</b>", html)
	assert.Equal(t, orb.Point{0.5, 0.2}, at)
	assert.Equal(t, "pointer", style.Cursor())

	style.Dispatch(mapsurface.Event{Type: mapsurface.EventMouseLeave, LayerID: desc.Fill})
	_, _, visible = popup.State()
	assert.False(t, visible)
	assert.Equal(t, "", style.Cursor())

	h.Release()
	h.Release()
	assert.Equal(t, 0, style.ListenerCount())
}

func TestAttachTooltip_MissingFactoryIsNoop(t *testing.T) {
	style, desc, _ := composed(t)
	core, logs := observer.New(zap.WarnLevel)

	h := AttachTooltip(style, desc.Fill, nil, func(geojson.Properties) string { return "" }, zap.New(core))
	require.NotNil(t, h)
	assert.Equal(t, 0, style.ListenerCount())
	assert.Equal(t, 1, logs.Len())

	assert.NotPanics(t, func() {
		h.Release()
		h.Release()
	})
}

func TestAttachHighlight_MissingLayerIsNoop(t *testing.T) {
	style, desc, _ := composed(t)

	h := AttachHighlight(style, desc.Fill, "missing-hover", "code", zap.NewNop())
	assert.Equal(t, 0, style.ListenerCount())
	h.Release()
}

func TestAttachClick(t *testing.T) {
	style, desc, features := composed(t)

	var got []ClickEvent
	h := AttachClick(style, desc.Fill, "code", func(ev ClickEvent) { got = append(got, ev) }, zap.NewNop())

	style.Dispatch(mapsurface.Event{Type: mapsurface.EventClick, LayerID: desc.Fill, Feature: features[1], LngLat: orb.Point{1.5, 0.5}})
	style.Dispatch(mapsurface.Event{Type: mapsurface.EventClick, LayerID: desc.Fill})
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Key)
	assert.Equal(t, orb.Point{1.5, 0.5}, got[0].LngLat)
	assert.Equal(t, "B", got[0].Properties["code"])

	h.Release()
	style.Dispatch(mapsurface.Event{Type: mapsurface.EventClick, LayerID: desc.Fill, Feature: features[0]})
	assert.Len(t, got, 1)

	assert.Equal(t, 0, style.ListenerCount())
	AttachClick(style, desc.Fill, "code", nil, nil).Release()
}

func TestAttachResetControl(t *testing.T) {
	style, _, features := composed(t)
	res := choropleth.ComputeBounds(features)
	require.NotNil(t, res.Bounds)

	h := AttachResetControl(style, res.Bounds, 20, zap.NewNop())
	controls := style.Controls()
	require.Len(t, controls, 1)

	style.FitBounds(orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{60, 60}}, 0)
	assert.True(t, style.ActivateControl(controls[0].ID))
	cam := style.Camera()
	require.NotNil(t, cam.Bounds)
	assert.Equal(t, *res.Bounds, *cam.Bounds)
	assert.Equal(t, 20.0, cam.Padding)

	h.Release()
	h.Release()
	assert.Empty(t, style.Controls())

	AttachResetControl(style, nil, 0, zap.NewNop()).Release()
	assert.Empty(t, style.Controls())
}

func TestBind_GroupRelease(t *testing.T) {
	style, desc, features := composed(t)
	res := choropleth.ComputeBounds(features)

	g := Bind(style, desc, BindOptions{
		Popups:  style.PopupFactory(),
		Content: func(geojson.Properties) string { return "x" },
		OnClick: func(ClickEvent) {},
		Bounds:  res.Bounds,
	}, zap.NewNop())

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 5, style.ListenerCount())
	assert.Len(t, style.Controls(), 1)

	g.Release()
	g.Release()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, style.ListenerCount())
	assert.Empty(t, style.Controls())
}

func TestRenderLegend_OmitsEmptyEntries(t *testing.T) {
	scale := sizescale.Build([]float64{1, 2, 3, 100}, sizescale.DefaultOptions())
	div := colorscale.NewDivergent([]float64{30, 10, 50, 40}, nil, colorscale.DefaultConfig())
	colors := ColorEntries(div.Bins([]float64{30, 10, 50, 40}), func(min, max float64) string { return "v" })

	legend := Legend{
		Title:     "Unemployment <%>",
		Colors:    colors,
		Sizes:     SizeEntries(scale),
		SizeTitle: "Population",
	}
	legend.Colors[0].Count = 0
	legend.Colors[1].Count = 0

	var buf bytes.Buffer
	require.NoError(t, RenderLegend(&buf, legend))
	html := buf.String()

	visible := 0
	for _, c := range legend.Colors {
		if c.Count > 0 {
			visible++
		}
	}
	assert.Equal(t, visible, strings.Count(html, "map-legend__swatch"))
	assert.Equal(t, 2, strings.Count(html, "map-legend__circle"))
	assert.Contains(t, html, "map-legend__row--outlier")
	assert.Contains(t, html, "Unemployment &lt;%&gt;")
	assert.Len(t, legend.Colors, 5, "source entries are kept")
}

func TestTrendEntries(t *testing.T) {
	c := trend.NewClassifier(trend.DefaultConfig())
	summary := c.Summarize([]trend.Pair{
		{T1: 5, T2: 10, Polarity: trend.HigherIsBetter},
		{T1: 5, T2: 3, Polarity: trend.HigherIsBetter},
	})

	entries := TrendEntries(summary)
	require.Len(t, entries, len(trend.Categories))

	var buf bytes.Buffer
	require.NoError(t, RenderLegend(&buf, Legend{Colors: entries}))
	assert.Equal(t, 2, strings.Count(buf.String(), "map-legend__swatch"))
	assert.Contains(t, buf.String(), trend.AccelerateGood.Label())
}

func TestSizeEntries_NoData(t *testing.T) {
	entries := SizeEntries(sizescale.Build(nil, sizescale.DefaultOptions()))
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Count)
}
