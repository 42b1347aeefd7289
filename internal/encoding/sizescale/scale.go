package sizescale

import (
	"fmt"
	"math"
	"slices"

	"github.com/indicator-maps/internal/pkg/numfmt"
)

// radiusExponent делает шкалу радиусов выпуклой: различия крупных значений заметнее
const radiusExponent = 1.5

// Options - параметры построения шкалы размеров
type Options struct {
	Bins              int
	RadiusMin         float64
	RadiusMax         float64
	OutlierMultiplier float64
	MaxOutlierPct     float64
	MinOutlierCount   int

	NormalStroke       string
	NormalStrokeWidth  float64
	OutlierStroke      string
	OutlierStrokeWidth float64

	// Formatter форматирует границы интервалов легенды
	Formatter func(float64) string
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Bins:               5,
		RadiusMin:          4,
		RadiusMax:          24,
		OutlierMultiplier:  1.5,
		MaxOutlierPct:      0.05,
		MinOutlierCount:    3,
		NormalStroke:       "#ffffff",
		NormalStrokeWidth:  1,
		OutlierStroke:      "#333333",
		OutlierStrokeWidth: 2,
		Formatter:          numfmt.Compact,
	}
}

// withDefaults подставляет значения по умолчанию вместо нулевых и невалидных
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Bins < 1 {
		o.Bins = def.Bins
	}
	if o.RadiusMin <= 0 {
		o.RadiusMin = def.RadiusMin
	}
	if o.RadiusMax < o.RadiusMin {
		o.RadiusMax = math.Max(def.RadiusMax, o.RadiusMin)
	}
	if o.OutlierMultiplier <= 0 {
		o.OutlierMultiplier = def.OutlierMultiplier
	}
	if o.MaxOutlierPct <= 0 || o.MaxOutlierPct >= 1 {
		o.MaxOutlierPct = def.MaxOutlierPct
	}
	if o.MinOutlierCount < 1 {
		o.MinOutlierCount = def.MinOutlierCount
	}
	if o.NormalStroke == "" {
		o.NormalStroke = def.NormalStroke
	}
	if o.NormalStrokeWidth <= 0 {
		o.NormalStrokeWidth = def.NormalStrokeWidth
	}
	if o.OutlierStroke == "" {
		o.OutlierStroke = def.OutlierStroke
	}
	if o.OutlierStrokeWidth <= 0 {
		o.OutlierStrokeWidth = def.OutlierStrokeWidth
	}
	if o.Formatter == nil {
		o.Formatter = def.Formatter
	}
	return o
}

// Bin - интервал шкалы размеров. Первый интервал включает Min, остальные - (Min, Max].
type Bin struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Radius    float64 `json:"radius"`
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	IsOutlier bool    `json:"is_outlier"`
}

// LegendEntry - строка легенды размеров
type LegendEntry struct {
	Label     string  `json:"label"`
	Radius    float64 `json:"radius"`
	Count     int     `json:"count"`
	IsOutlier bool    `json:"is_outlier"`
}

// Scale - адаптивная шкала радиусов
type Scale struct {
	Bins         []Bin   `json:"bins"`
	Threshold    float64 `json:"threshold"`
	OutlierCount int     `json:"outlier_count"`
	Total        int     `json:"total"`
	Description  string  `json:"description"`
	NoData       bool    `json:"no_data"`

	opts Options
}

// Build строит шкалу по выборке значений. Нечисловые значения отбрасываются;
// пустая выборка дает шкалу-заглушку с минимальным радиусом.
func Build(values []float64, opts Options) *Scale {
	opts = opts.withDefaults()

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	slices.Sort(sorted)

	s := &Scale{opts: opts, Total: len(sorted)}
	n := len(sorted)
	if n == 0 {
		s.NoData = true
		s.Description = "No data"
		return s
	}

	binCount := min(opts.Bins, max(2, int(math.Ceil(math.Sqrt(float64(n))/3))))

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	threshold := q3 + opts.OutlierMultiplier*(q3-q1)

	outliers := n - upperBound(sorted, threshold)
	limit := max(opts.MinOutlierCount, int(math.Floor(float64(n)*opts.MaxOutlierPct)))
	if outliers > limit && limit < n {
		threshold = sorted[n-limit-1]
		outliers = n - upperBound(sorted, threshold)
	}
	s.Threshold = threshold
	s.OutlierCount = outliers

	normal := sorted[:n-outliers]
	normalBins := binCount
	if outliers > 0 {
		normalBins = max(1, binCount-1)
	}

	var edges []float64
	if len(normal) > 0 {
		edges = append(edges, normal[0])
		for i := 1; i < normalBins; i++ {
			edges = appendEdge(edges, quantile(normal, float64(i)/float64(normalBins)))
		}
		edges = appendEdge(edges, normal[len(normal)-1])
	}

	bins := make([]Bin, 0, len(edges)+1)
	if len(edges) == 1 {
		bins = append(bins, Bin{Min: edges[0], Max: edges[0]})
	}
	for i := 1; i < len(edges); i++ {
		bins = append(bins, Bin{Min: edges[i-1], Max: edges[i]})
	}
	if outliers > 0 {
		lower := sorted[0]
		if len(edges) > 0 {
			lower = edges[len(edges)-1]
		}
		bins = append(bins, Bin{Min: lower, Max: sorted[n-1], IsOutlier: true})
	}

	k := len(bins)
	for i := range bins {
		bins[i].Radius = radiusFor(i, k, opts.RadiusMin, opts.RadiusMax)
		bins[i].Label = s.binLabel(bins[i])
	}
	s.Bins = bins

	for _, v := range sorted {
		s.Bins[s.binIndex(v)].Count++
	}

	s.Description = describe(s)
	return s
}

// Radius возвращает радиус значения по границам интервалов
func (s *Scale) Radius(v float64) float64 {
	if s.NoData || math.IsNaN(v) {
		return s.opts.RadiusMin
	}
	return s.Bins[s.binIndex(v)].Radius
}

// IsOutlier сообщает, попадает ли значение в интервал выбросов
func (s *Scale) IsOutlier(v float64) bool {
	if s.NoData || math.IsNaN(v) {
		return false
	}
	return s.Bins[s.binIndex(v)].IsOutlier
}

// Stroke возвращает цвет обводки: выбросы темнее
func (s *Scale) Stroke(v float64) string {
	if s.IsOutlier(v) {
		return s.opts.OutlierStroke
	}
	return s.opts.NormalStroke
}

// StrokeWidth возвращает толщину обводки: выбросы толще
func (s *Scale) StrokeWidth(v float64) float64 {
	if s.IsOutlier(v) {
		return s.opts.OutlierStrokeWidth
	}
	return s.opts.NormalStrokeWidth
}

// Legend возвращает строки легенды для всех интервалов, включая пустые
func (s *Scale) Legend() []LegendEntry {
	if s.NoData {
		return []LegendEntry{{Label: s.Description, Radius: s.opts.RadiusMin}}
	}
	entries := make([]LegendEntry, len(s.Bins))
	for i, b := range s.Bins {
		entries[i] = LegendEntry{
			Label:     b.Label,
			Radius:    b.Radius,
			Count:     b.Count,
			IsOutlier: b.IsOutlier,
		}
	}
	return entries
}

func (s *Scale) binIndex(v float64) int {
	for i, b := range s.Bins {
		if v <= b.Max {
			return i
		}
	}
	return len(s.Bins) - 1
}

func (s *Scale) binLabel(b Bin) string {
	f := s.opts.Formatter
	switch {
	case b.IsOutlier:
		return "> " + f(b.Min)
	case b.Min == b.Max:
		return f(b.Min)
	default:
		return f(b.Min) + " – " + f(b.Max)
	}
}

func radiusFor(i, k int, rMin, rMax float64) float64 {
	if k <= 1 {
		return rMin
	}
	return rMin + (rMax-rMin)*math.Pow(float64(i)/float64(k-1), radiusExponent)
}

// appendEdge добавляет границу, пропуская совпадающие из-за повторов значений
func appendEdge(edges []float64, v float64) []float64 {
	if len(edges) > 0 && v <= edges[len(edges)-1] {
		return edges
	}
	return append(edges, v)
}

// upperBound возвращает число элементов отсортированной выборки, не превышающих v
func upperBound(sorted []float64, v float64) int {
	i, _ := slices.BinarySearchFunc(sorted, v, func(e, target float64) int {
		if e <= target {
			return -1
		}
		return 1
	})
	return i
}

func describe(s *Scale) string {
	desc := fmt.Sprintf("%d values in %d size classes", s.Total, len(s.Bins))
	if s.OutlierCount > 0 {
		desc += fmt.Sprintf(", %d outliers above %s", s.OutlierCount, s.opts.Formatter(s.Threshold))
	}
	return desc
}
