package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/trend"
	"github.com/indicator-maps/internal/usecase"
	"github.com/indicator-maps/internal/usecase/dto"
)

func trendRepo(polarity int) *MockIndicatorRepository {
	repo := &MockIndicatorRepository{}
	repo.On("GetByID", mock.Anything, "employment").Return(&domain.Indicator{
		ID: "employment", Name: "Employment", Polarity: polarity,
	}, nil)
	repo.On("GetValues", mock.Anything, "employment", "2019", "region").Return([]domain.IndicatorRow{
		{Code: "A", Value: ptrFloat64(100)},
		{Code: "B", Value: ptrFloat64(50)},
		{Code: "C", Value: ptrFloat64(10)},
		{Code: "E", Value: ptrFloat64(100)},
	}, nil)
	repo.On("GetValues", mock.Anything, "employment", "2022", "region").Return([]domain.IndicatorRow{
		{Code: "A", Label: "Alpha", Value: ptrFloat64(110)},
		{Code: "B", Value: ptrFloat64(40)},
		{Code: "D", Value: ptrFloat64(5)},
		{Code: "E", Value: ptrFloat64(101)},
	}, nil)
	return repo
}

func TestTrendUseCase_GetTrend(t *testing.T) {
	cfg := config.Default()
	req := dto.TrendRequest{IndicatorID: "employment", From: "2019", To: "2022"}

	t.Run("higher is better", func(t *testing.T) {
		uc := usecase.NewTrendUseCase(trendRepo(domain.PolarityHigherIsBetter), cfg.Encoding, "region", zap.NewNop())

		resp, err := uc.GetTrend(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, resp.Items, 5)

		got := make(map[string]trend.Category, len(resp.Items))
		for _, it := range resp.Items {
			got[it.Code] = it.Category
		}
		assert.Equal(t, map[string]trend.Category{
			"A": trend.AccelerateGood,
			"B": trend.DecelerateGood,
			"C": trend.Neutral,
			"D": trend.Neutral,
			"E": trend.Neutral,
		}, got)

		assert.Equal(t, "A", resp.Items[0].Code)
		assert.Equal(t, "Alpha", resp.Items[0].Label)
		assert.Equal(t, trend.AccelerateGood.Color(), resp.Items[0].Color)

		c := resp.Items[2]
		require.NotNil(t, c.From)
		assert.Equal(t, 10.0, *c.From)
		assert.Nil(t, c.To)

		assert.Equal(t, 1, resp.Summary[trend.AccelerateGood])
		assert.Equal(t, 1, resp.Summary[trend.DecelerateGood])
		assert.Equal(t, 3, resp.Summary[trend.Neutral])
		assert.Equal(t, 0, resp.Summary[trend.AccelerateBad])
		assert.Len(t, resp.Legend, len(trend.Categories))
		require.NotNil(t, resp.Indicator)
		assert.Equal(t, "employment", resp.Indicator.ID)
	})

	t.Run("lower is better mirrors judgement", func(t *testing.T) {
		uc := usecase.NewTrendUseCase(trendRepo(domain.PolarityLowerIsBetter), cfg.Encoding, "region", zap.NewNop())

		resp, err := uc.GetTrend(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, trend.AccelerateBad, resp.Items[0].Category)
		assert.Equal(t, trend.DecelerateBad, resp.Items[1].Category)
	})
}
