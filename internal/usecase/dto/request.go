package dto

import (
	"github.com/paulmach/orb/geojson"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/encoding/trend"
)

// ChoroplethRequest - запрос на кодирование индикатора в хороплет
type ChoroplethRequest struct {
	IndicatorID string `json:"indicator_id" params:"id" validate:"required,slug,max=64"`
	Period      string `json:"period" query:"period" validate:"required,max=32"`
	Level       string `json:"level" query:"level" validate:"omitempty,slug,max=32"`
	Locale      string `json:"locale" query:"locale" validate:"omitempty,bcp47_language_tag"`
	Selected    string `json:"selected" query:"selected" validate:"omitempty,max=64"`
	Symbols     bool   `json:"symbols" query:"symbols"`
}

// Key возвращает ключ кеша. Выделение не входит в ключ: оно применяется поверх закешированной отрисовки.
func (r ChoroplethRequest) Key() domain.RenderKey {
	return domain.RenderKey{
		IndicatorID: r.IndicatorID,
		Period:      r.Period,
		Level:       r.Level,
		Locale:      r.Locale,
	}
}

// ChartRequest - запрос на построение меток диаграммы
type ChartRequest struct {
	IndicatorID string `json:"indicator_id" params:"id" validate:"required,slug,max=64"`
	Period      string `json:"period" query:"period" validate:"required,max=32"`
	Level       string `json:"level" query:"level" validate:"omitempty,slug,max=32"`
	Locale      string `json:"locale" query:"locale" validate:"omitempty,bcp47_language_tag"`
	// Codes ограничивает диаграмму указанными территориями
	Codes []string `json:"codes,omitempty" query:"codes" validate:"omitempty,max=500,dive,max=64"`
}

// TrendRequest - запрос на классификацию динамики между двумя периодами
type TrendRequest struct {
	IndicatorID string `json:"indicator_id" params:"id" validate:"required,slug,max=64"`
	From        string `json:"from" query:"from" validate:"required,max=32"`
	To          string `json:"to" query:"to" validate:"required,max=32"`
	Level       string `json:"level" query:"level" validate:"omitempty,slug,max=32"`
}

// EncodeChoroplethRequest - запрос на кодирование переданных объектов и строк без обращения к БД
type EncodeChoroplethRequest struct {
	Features    *geojson.FeatureCollection `json:"features" validate:"required"`
	Rows        []domain.IndicatorRow      `json:"rows" validate:"max=50000,dive"`
	ValueColumn string                     `json:"value_column" validate:"omitempty,max=64"`
	Reference   *float64                   `json:"reference,omitempty"`
	KeyProperty string                     `json:"key_property" validate:"omitempty,max=64"`
	Title       string                     `json:"title" validate:"omitempty,max=256"`
	Decimals    int                        `json:"decimals" validate:"min=0,max=6"`
	Locale      string                     `json:"locale" validate:"omitempty,bcp47_language_tag"`
	Selected    string                     `json:"selected" validate:"omitempty,max=64"`
	Symbols     bool                       `json:"symbols"`
}

// EncodeTrendRequest - запрос на классификацию переданных пар значений
type EncodeTrendRequest struct {
	Pairs []trend.Pair `json:"pairs" validate:"required,min=1,max=50000"`
}

// EncodeSizesRequest - запрос на построение шкалы размеров по переданным значениям
type EncodeSizesRequest struct {
	Values []float64 `json:"values" validate:"required,min=1,max=100000"`
	Bins   int       `json:"bins" validate:"omitempty,min=1,max=12"`
	Title  string    `json:"title" validate:"omitempty,max=256"`
}
