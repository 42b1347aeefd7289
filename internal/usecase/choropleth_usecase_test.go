package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/colorscale"
	apperrors "github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/usecase"
	"github.com/indicator-maps/internal/usecase/dto"
)

func territory(code string, x int, population *float64) *domain.Territory {
	return &domain.Territory{
		Code:         code,
		Level:        "region",
		Name:         "Territory " + code,
		Population:   population,
		GeometryJSON: []byte(fmt.Sprintf(squareGeometry, x, x+1, x+1, x, x)),
	}
}

type choroplethFixture struct {
	indicators  *MockIndicatorRepository
	territories *MockTerritoryRepository
	cache       *MockCacheRepository
	uc          *usecase.ChoroplethUseCase
}

func newChoroplethFixture() *choroplethFixture {
	cfg := config.Default()
	f := &choroplethFixture{
		indicators:  &MockIndicatorRepository{},
		territories: &MockTerritoryRepository{},
		cache:       &MockCacheRepository{},
	}
	f.uc = usecase.NewChoroplethUseCase(
		f.indicators, f.territories, f.cache,
		cfg.Encoding, cfg.Map, cfg.Cache.ChoroplethTTL,
		zap.NewNop(),
	)
	return f
}

// expectStore sets up repository calls for one full encoding of "unemployment" 2022 by region
func (f *choroplethFixture) expectStore() {
	f.indicators.On("GetByID", mock.Anything, "unemployment").Return(&domain.Indicator{
		ID: "unemployment", Name: "Unemployment", Unit: "%", Polarity: domain.PolarityLowerIsBetter, Decimals: 1,
	}, nil)
	f.indicators.On("GetValues", mock.Anything, "unemployment", "2022", "region").Return([]domain.IndicatorRow{
		{Code: "A", Label: "Alpha", Value: ptrFloat64(10), Weight: ptrFloat64(100)},
		{Code: "B", Value: ptrFloat64(20), Weight: ptrFloat64(300)},
		{Code: "C"},
	}, nil)
	f.indicators.On("GetReference", mock.Anything, "unemployment", "2022").Return(ptrFloat64(15), nil)
	f.territories.On("GetByLevel", mock.Anything, "region").Return([]*domain.Territory{
		territory("A", 0, nil),
		territory("B", 1, nil),
		territory("C", 2, ptrFloat64(200)),
	}, nil)
}

var renderKey = domain.RenderKey{IndicatorID: "unemployment", Period: "2022", Level: "region", Locale: "en"}

func TestChoroplethUseCase_RenderEncodesAndCaches(t *testing.T) {
	f := newChoroplethFixture()
	f.expectStore()
	f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
	f.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, config.Default().Cache.ChoroplethTTL).Return(nil)

	resp, err := f.uc.Render(context.Background(), dto.ChoroplethRequest{IndicatorID: "unemployment", Period: "2022"})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, "region", resp.Level)
	assert.Equal(t, "en", resp.Locale)
	assert.Equal(t, 2, resp.Matched)
	require.Len(t, resp.Source.Features, 3)

	props := resp.Source.Features[0].Properties
	assert.Equal(t, colorscale.DefaultPalette[0], props["fill_color"])
	assert.Equal(t, "10.0", props["value_label"])
	assert.Equal(t, "Alpha", props["label"])
	assert.Equal(t, colorscale.DefaultPalette[7], resp.Source.Features[1].Properties["fill_color"])
	assert.Equal(t, "#d9d9d9", resp.Source.Features[2].Properties["fill_color"])
	assert.Nil(t, resp.Source.Features[2].Properties["value"])

	require.NotNil(t, resp.Bounds)
	assert.Equal(t, domain.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 3}, *resp.Bounds)
	assert.Equal(t, "indicator-fill", resp.Layers.Fill)
	assert.Empty(t, resp.Layers.Symbols)
	assert.Equal(t, 15.0, resp.ColorScale.Reference)
	assert.Equal(t, 3, resp.SizeScale.Total)
	assert.Equal(t, "Unemployment (%)", resp.Legend.Title)
	assert.Len(t, resp.Legend.Colors, 5)
	for _, c := range resp.Legend.Colors {
		assert.Regexp(t, `^-?[\d,]+\.\d( – -?[\d,]+\.\d)?$`, c.Label, "legend ranges use the indicator's decimals")
	}

	f.cache.AssertExpectations(t)
}

func TestChoroplethUseCase_RenderServesFromCache(t *testing.T) {
	first := newChoroplethFixture()
	first.expectStore()
	var payload []byte
	first.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
	first.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { payload = args.Get(2).([]byte) }).
		Return(nil)

	_, err := first.uc.Render(context.Background(), dto.ChoroplethRequest{IndicatorID: "unemployment", Period: "2022"})
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	second := newChoroplethFixture()
	second.cache.On("GetRender", mock.Anything, renderKey).Return(payload, nil)

	resp, err := second.uc.Render(context.Background(), dto.ChoroplethRequest{
		IndicatorID: "unemployment",
		Period:      "2022",
		Selected:    "B",
		Symbols:     true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Equal(t, 2, resp.Matched)
	assert.Len(t, resp.Source.Features, 3)
	assert.Equal(t, "B", resp.Selected)
	assert.Equal(t, "indicator-symbols", resp.Layers.Symbols)
	second.indicators.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	second.cache.AssertNotCalled(t, "SetRender", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChoroplethUseCase_CacheFailuresDoNotFailRequest(t *testing.T) {
	f := newChoroplethFixture()
	f.expectStore()
	f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, errors.New("redis down"))
	f.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	resp, err := f.uc.Render(context.Background(), dto.ChoroplethRequest{IndicatorID: "unemployment", Period: "2022"})
	require.NoError(t, err)
	assert.Len(t, resp.Source.Features, 3)
}

func TestChoroplethUseCase_Errors(t *testing.T) {
	ctx := context.Background()
	req := dto.ChoroplethRequest{IndicatorID: "unemployment", Period: "2022"}

	t.Run("unknown indicator", func(t *testing.T) {
		f := newChoroplethFixture()
		f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
		f.indicators.On("GetByID", mock.Anything, "unemployment").Return(nil, nil)

		_, err := f.uc.Render(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrIndicatorNotFound)
	})

	t.Run("no values", func(t *testing.T) {
		f := newChoroplethFixture()
		f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
		f.indicators.On("GetByID", mock.Anything, "unemployment").Return(&domain.Indicator{ID: "unemployment"}, nil)
		f.indicators.On("GetValues", mock.Anything, "unemployment", "2022", "region").Return([]domain.IndicatorRow{}, nil)
		f.indicators.On("ListPeriods", mock.Anything, "unemployment").Return(nil, errors.New("timeout"))

		_, err := f.uc.Render(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrNoData)
	})

	t.Run("database failure", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		f := newChoroplethFixture()
		f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
		f.indicators.On("GetByID", mock.Anything, "unemployment").Return(nil, dbErr)

		_, err := f.uc.Render(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestChoroplethUseCase_Style(t *testing.T) {
	f := newChoroplethFixture()
	f.expectStore()
	f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
	f.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, mock.Anything).Return(nil)

	style, err := f.uc.Style(context.Background(), dto.ChoroplethRequest{
		IndicatorID: "unemployment",
		Period:      "2022",
		Selected:    "A",
	})
	require.NoError(t, err)

	fc, ok := style.SourceData(usecase.SourceID)
	require.True(t, ok)
	require.Len(t, fc.Features, 3)

	assert.True(t, style.Matches("indicator-selection", fc.Features[0]))
	assert.False(t, style.Matches("indicator-selection", fc.Features[1]))
	assert.False(t, style.Matches("indicator-hover", fc.Features[0]))

	cam := style.Camera()
	assert.Equal(t, orb.Point{1.5, 0.5}, cam.Center)
	require.NotNil(t, cam.Bounds)

	doc, err := style.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"indicator-fill"`)
}

func TestChoroplethUseCase_LegendHTML(t *testing.T) {
	f := newChoroplethFixture()
	f.expectStore()
	f.cache.On("GetRender", mock.Anything, renderKey).Return(nil, nil)
	f.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, mock.Anything).Return(nil)

	html, err := f.uc.LegendHTML(context.Background(), dto.ChoroplethRequest{IndicatorID: "unemployment", Period: "2022"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Unemployment (%)")
	assert.Contains(t, string(html), "map-legend__swatch")
}

func TestChoroplethUseCase_WarmBypassesCacheRead(t *testing.T) {
	f := newChoroplethFixture()
	f.expectStore()
	f.cache.On("SetRender", mock.Anything, renderKey, mock.Anything, mock.Anything).Return(nil)

	n, err := f.uc.Warm(context.Background(), domain.RenderKey{IndicatorID: "unemployment", Period: "2022"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	f.cache.AssertNotCalled(t, "GetRender", mock.Anything, mock.Anything)
	f.cache.AssertExpectations(t)
}
