package choropleth

import (
	"github.com/indicator-maps/internal/pkg/numfmt"
)

// PropertyNames - имена свойств, которыми декорируются объекты
type PropertyNames struct {
	FillColor         string
	Value             string
	ValueLabel        string
	Label             string
	SizeWeight        string
	SymbolRadius      string
	SymbolStroke      string
	SymbolStrokeWidth string
}

// DefaultPropertyNames возвращает стандартные имена свойств
func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		FillColor:         "fill_color",
		Value:             "value",
		ValueLabel:        "value_label",
		Label:             "label",
		SizeWeight:        "size_weight",
		SymbolRadius:      "symbol_radius",
		SymbolStroke:      "symbol_stroke",
		SymbolStrokeWidth: "symbol_stroke_width",
	}
}

// Options - параметры сборки источника и стека слоев
type Options struct {
	// KeyProperty - свойство объекта, совпадающее с кодом строки индикатора
	KeyProperty string
	// NameProperty - собственное название объекта, используется если у строки нет подписи
	NameProperty string
	// WeightFields - поля строки для веса размера, по приоритету
	WeightFields []string
	// FeatureWeightProperties - свойства объекта для веса размера, если у строки его нет
	FeatureWeightProperties []string

	Props PropertyNames

	DefaultFill    string
	FillOpacity    float64
	BorderColor    string
	BorderWidth    float64
	HoverColor     string
	HoverOpacity   float64
	SelectionColor string
	SelectionWidth float64

	Labels       bool
	LabelMinZoom float64
	LabelSize    float64

	Symbols    bool
	SymbolFill string

	// Selected - ключ выбранной территории при компоновке
	Selected string

	// ValueFormatter форматирует значение для подписи
	ValueFormatter func(float64) string
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		KeyProperty:             "code",
		NameProperty:            "name",
		WeightFields:            []string{"weight", "population"},
		FeatureWeightProperties: []string{"population"},
		Props:                   DefaultPropertyNames(),
		DefaultFill:             "#d9d9d9",
		FillOpacity:             0.8,
		BorderColor:             "#ffffff",
		BorderWidth:             0.6,
		HoverColor:              "#000000",
		HoverOpacity:            0.15,
		SelectionColor:          "#111111",
		SelectionWidth:          2.5,
		Labels:                  true,
		LabelMinZoom:            6,
		LabelSize:               12,
		SymbolFill:              "#4a4a4a",
		ValueFormatter:          numfmt.Compact,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.KeyProperty == "" {
		o.KeyProperty = def.KeyProperty
	}
	if o.NameProperty == "" {
		o.NameProperty = def.NameProperty
	}
	if o.Props == (PropertyNames{}) {
		o.Props = def.Props
	}
	if o.DefaultFill == "" {
		o.DefaultFill = def.DefaultFill
	}
	if o.FillOpacity <= 0 {
		o.FillOpacity = def.FillOpacity
	}
	if o.BorderColor == "" {
		o.BorderColor = def.BorderColor
	}
	if o.BorderWidth <= 0 {
		o.BorderWidth = def.BorderWidth
	}
	if o.HoverColor == "" {
		o.HoverColor = def.HoverColor
	}
	if o.HoverOpacity <= 0 {
		o.HoverOpacity = def.HoverOpacity
	}
	if o.SelectionColor == "" {
		o.SelectionColor = def.SelectionColor
	}
	if o.SelectionWidth <= 0 {
		o.SelectionWidth = def.SelectionWidth
	}
	if o.LabelSize <= 0 {
		o.LabelSize = def.LabelSize
	}
	if o.SymbolFill == "" {
		o.SymbolFill = def.SymbolFill
	}
	if o.ValueFormatter == nil {
		o.ValueFormatter = def.ValueFormatter
	}
	return o
}
