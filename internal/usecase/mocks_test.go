package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/indicator-maps/internal/domain"
)

// MockIndicatorRepository is a mock of IndicatorRepository
type MockIndicatorRepository struct {
	mock.Mock
}

func (m *MockIndicatorRepository) GetByID(ctx context.Context, id string) (*domain.Indicator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Indicator), args.Error(1)
}

func (m *MockIndicatorRepository) GetValues(ctx context.Context, indicatorID, period, level string) ([]domain.IndicatorRow, error) {
	args := m.Called(ctx, indicatorID, period, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndicatorRow), args.Error(1)
}

func (m *MockIndicatorRepository) GetValuesByCodes(ctx context.Context, indicatorID, period, level string, codes []string) ([]domain.IndicatorRow, error) {
	args := m.Called(ctx, indicatorID, period, level, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndicatorRow), args.Error(1)
}

func (m *MockIndicatorRepository) GetReference(ctx context.Context, indicatorID, period string) (*float64, error) {
	args := m.Called(ctx, indicatorID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockIndicatorRepository) ListPeriods(ctx context.Context, indicatorID string) ([]string, error) {
	args := m.Called(ctx, indicatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTerritoryRepository is a mock of TerritoryRepository
type MockTerritoryRepository struct {
	mock.Mock
}

func (m *MockTerritoryRepository) GetByLevel(ctx context.Context, level string) ([]*domain.Territory, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Territory), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetRender(ctx context.Context, key domain.RenderKey) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetRender(ctx context.Context, key domain.RenderKey, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, data, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateIndicator(ctx context.Context, indicatorID string) (int, error) {
	args := m.Called(ctx, indicatorID)
	return args.Int(0), args.Error(1)
}

func ptrFloat64(v float64) *float64 {
	return &v
}

const squareGeometry = `{"type":"Polygon","coordinates":[[[%d,0],[%d,0],[%d,1],[%d,1],[%d,0]]]}`
