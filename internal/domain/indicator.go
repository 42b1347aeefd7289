package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// Polarity показывает, желателен ли рост индикатора
const (
	PolarityLowerIsBetter  = -1
	PolarityNeutral        = 0
	PolarityHigherIsBetter = 1
)

// Indicator - метаданные статистического индикатора
type Indicator struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Unit     string `json:"unit" db:"unit"`
	Polarity int    `json:"polarity" db:"polarity"`
	Decimals int    `json:"decimals" db:"decimals"`
}

// Fields - дополнительные числовые поля строки индикатора (jsonb)
type Fields map[string]*float64

// Scan реализует sql.Scanner для jsonb
func (f *Fields) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported fields type %T", src)
	}
	if len(raw) == 0 {
		*f = nil
		return nil
	}
	return json.Unmarshal(raw, (*map[string]*float64)(f))
}

// Value реализует driver.Valuer для jsonb
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(map[string]*float64(f))
}

// IndicatorRow - значение индикатора для одной территории
type IndicatorRow struct {
	Code   string   `json:"code" db:"code" validate:"required"`
	Label  string   `json:"label" db:"label"`
	Value  *float64 `json:"value" db:"value"`
	Weight *float64 `json:"weight,omitempty" db:"weight"`
	Fields Fields   `json:"fields,omitempty" db:"fields"`
}

// Field возвращает числовое поле строки. Пустое имя и "value" означают основное значение,
// "weight" - вес. Отсутствующие, NaN и бесконечные значения возвращают ok=false.
func (r IndicatorRow) Field(name string) (float64, bool) {
	var v *float64
	switch name {
	case "", "value":
		v = r.Value
	case "weight":
		v = r.Weight
	default:
		v = r.Fields[name]
	}
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// RowsByCode индексирует строки по коду территории. При повторе побеждает последняя строка.
func RowsByCode(rows []IndicatorRow) map[string]IndicatorRow {
	out := make(map[string]IndicatorRow, len(rows))
	for _, r := range rows {
		out[r.Code] = r
	}
	return out
}

// FieldValues возвращает валидные значения поля по всем строкам
func FieldValues(rows []IndicatorRow, name string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Field(name); ok {
			out = append(out, v)
		}
	}
	return out
}

// RenderKey - ключ кеша закодированной карты
type RenderKey struct {
	IndicatorID string
	Period      string
	Level       string
	Locale      string
}

func (k RenderKey) String() string {
	return fmt.Sprintf("choropleth:%s:%s:%s:%s", k.IndicatorID, k.Period, k.Level, k.Locale)
}

// IndicatorPattern возвращает шаблон ключей всех отрисовок индикатора
func IndicatorPattern(indicatorID string) string {
	return fmt.Sprintf("choropleth:%s:*", indicatorID)
}
