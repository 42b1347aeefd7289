package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoData - подпись для отсутствующего значения
const NoData = "–"

type magnitude struct {
	div    float64
	suffix string
}

var magnitudes = []magnitude{
	{div: 1e9, suffix: "B"},
	{div: 1e6, suffix: "M"},
	{div: 1e3, suffix: "k"},
}

// Formatter форматирует числовые значения для подписей карты и легенды
type Formatter struct {
	printer  *message.Printer
	decimals int
}

// New создает форматтер для локали (BCP 47) с заданным числом знаков после запятой.
// Неизвестная локаль заменяется на английскую.
func New(locale string, decimals int) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if decimals < 0 {
		decimals = 0
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		decimals: decimals,
	}
}

// Format возвращает значение с разделителями разрядов локали
func (f *Formatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", f.decimals), v)
}

// FormatPtr форматирует nullable значение
func (f *Formatter) FormatPtr(v *float64) string {
	if v == nil {
		return NoData
	}
	return f.Format(*v)
}

// Range форматирует интервал легенды; вырожденный интервал - одним числом
func (f *Formatter) Range(min, max float64) string {
	if min == max {
		return f.Format(min)
	}
	return f.Format(min) + " – " + f.Format(max)
}

// Compact форматирует значение с суффиксом порядка: 1500 -> "1.5k", 2300000 -> "2.3M".
func Compact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoData
	}

	abs := math.Abs(v)
	for i, m := range magnitudes {
		if abs < m.div {
			continue
		}
		// 999 950 округляется до 1000k, поднимаем на порядок выше
		if i > 0 && math.Abs(roundTo(v/m.div, 1)) >= 1000 {
			up := magnitudes[i-1]
			return trimmed(v/up.div, 1) + up.suffix
		}
		return trimmed(v/m.div, 1) + m.suffix
	}

	if abs > 0 && abs < 1 {
		return trimmed(v, 2)
	}
	if roundTo(abs, 1) >= 1000 {
		return trimmed(v/1e3, 1) + "k"
	}
	return trimmed(v, 1)
}

func trimmed(v float64, decimals int) string {
	s := strconv.FormatFloat(roundTo(v, decimals), 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
