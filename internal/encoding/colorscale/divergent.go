package colorscale

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultPalette - 8-ступенчатая расходящаяся палитра (красный ниже эталона, синий выше)
var DefaultPalette = [8]string{
	"#b2182b", "#d6604d", "#f4a582", "#fddbc7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac",
}

// DefaultAnchors - опорные точки в долях от максимального отклонения.
// Неравномерны: малые отклонения около эталона различимы, выбросы насыщаются.
var DefaultAnchors = [6]float64{-1.0, -0.5, -0.1, 0.1, 0.5, 1.0}

// paletteStops - индексы палитры, сопоставленные опорным точкам
var paletteStops = [6]int{0, 1, 3, 4, 6, 7}

// DefaultNoDataColor - заливка для отсутствующих значений
const DefaultNoDataColor = "#d9d9d9"

// Config - параметры расходящейся шкалы
type Config struct {
	Palette     [8]string
	Anchors     [6]float64
	NoDataColor string
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Palette:     DefaultPalette,
		Anchors:     DefaultAnchors,
		NoDataColor: DefaultNoDataColor,
	}
}

// ColorBin - интервал значений легенды с цветом и числом попавших территорий
type ColorBin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Color string  `json:"color"`
	Count int     `json:"count"`
}

// Divergent отображает отклонение от эталонного значения в цвет
type Divergent struct {
	reference float64
	maxAbs    float64
	anchors   [6]float64
	stops     [6]drawing.Color
	noData    drawing.Color
}

// NewDivergent строит шкалу по значениям набора данных и эталону (nil трактуется как 0).
// Нечисловые значения игнорируются; при нулевом разбросе ширина домена равна 1.
func NewDivergent(values []float64, reference *float64, cfg Config) *Divergent {
	ref := 0.0
	if reference != nil && isFinite(*reference) {
		ref = *reference
	}

	maxAbs := 0.0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if d := math.Abs(v - ref); d > maxAbs {
			maxAbs = d
		}
	}
	if maxAbs == 0 || !isFinite(maxAbs) {
		maxAbs = 1
	}

	d := &Divergent{
		reference: ref,
		maxAbs:    maxAbs,
		anchors:   cfg.Anchors,
		noData:    parseOr(cfg.NoDataColor, DefaultNoDataColor),
	}
	if !increasing(d.anchors) {
		d.anchors = DefaultAnchors
	}
	for i, idx := range paletteStops {
		d.stops[i] = parseOr(cfg.Palette[idx], DefaultPalette[idx])
	}

	return d
}

// Reference возвращает эталонное значение
func (d *Divergent) Reference() float64 {
	return d.reference
}

// MaxAbsDeviation возвращает максимальное абсолютное отклонение в наборе
func (d *Divergent) MaxAbsDeviation() float64 {
	return d.maxAbs
}

// Deviation возвращает знаковое отклонение от эталона
func (d *Divergent) Deviation(v float64) float64 {
	return v - d.reference
}

// Normalize возвращает отклонение в долях от максимального, ограниченное доменом опорных точек
func (d *Divergent) Normalize(v float64) float64 {
	f := (v - d.reference) / d.maxAbs
	return math.Max(d.anchors[0], math.Min(d.anchors[len(d.anchors)-1], f))
}

// Domain возвращает опорные точки в единицах значения показателя
func (d *Divergent) Domain() [6]float64 {
	var domain [6]float64
	for i, a := range d.anchors {
		domain[i] = d.reference + a*d.maxAbs
	}
	return domain
}

// Color возвращает цвет значения
func (d *Divergent) Color(v float64) drawing.Color {
	if !isFinite(v) {
		return d.noData
	}
	return d.colorAt(d.Normalize(v))
}

// Hex возвращает цвет значения в формате #rrggbb
func (d *Divergent) Hex(v float64) string {
	return Hex(d.Color(v))
}

// Midpoint возвращает цвет нулевого отклонения
func (d *Divergent) Midpoint() drawing.Color {
	return d.colorAt(0)
}

// NoData возвращает цвет отсутствующего значения
func (d *Divergent) NoData() drawing.Color {
	return d.noData
}

// Bins возвращает интервалы между опорными точками с числом попавших значений
func (d *Divergent) Bins(values []float64) []ColorBin {
	domain := d.Domain()
	bins := make([]ColorBin, len(domain)-1)
	for i := range bins {
		bins[i] = ColorBin{
			Min:   domain[i],
			Max:   domain[i+1],
			Color: Hex(d.colorAt((d.anchors[i] + d.anchors[i+1]) / 2)),
		}
	}

	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		idx := len(bins) - 1
		for i, b := range bins {
			if v <= b.Max {
				idx = i
				break
			}
		}
		bins[idx].Count++
	}

	return bins
}

func (d *Divergent) colorAt(f float64) drawing.Color {
	last := len(d.anchors) - 1
	if f <= d.anchors[0] {
		return d.stops[0]
	}
	if f >= d.anchors[last] {
		return d.stops[last]
	}
	for i := 0; i < last; i++ {
		lo, hi := d.anchors[i], d.anchors[i+1]
		if f > hi {
			continue
		}
		width := hi - lo
		if width <= 0 {
			return d.stops[i+1]
		}
		return Lerp(d.stops[i], d.stops[i+1], (f-lo)/width)
	}
	return d.stops[last]
}

func parseOr(s, fallback string) drawing.Color {
	if c, err := ParseHex(s); err == nil {
		return c
	}
	return MustParseHex(fallback)
}

func increasing(anchors [6]float64) bool {
	for i := 1; i < len(anchors); i++ {
		if !(anchors[i] > anchors[i-1]) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
