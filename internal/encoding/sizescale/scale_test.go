package sizescale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}

// checkInvariants verifies the properties every scale must hold.
func checkInvariants(t *testing.T, s *Scale, values []float64, opts Options) {
	t.Helper()
	opts = opts.withDefaults()

	valid := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		valid++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	require.NotEmpty(t, s.Bins)
	total := 0
	outlierBins := 0
	for i, b := range s.Bins {
		total += b.Count
		if b.IsOutlier {
			outlierBins++
			assert.Equal(t, len(s.Bins)-1, i, "only the last bin may be the outlier bin")
		}
		if i > 0 {
			assert.Equal(t, s.Bins[i-1].Max, b.Min, "bins must be contiguous")
			assert.Greater(t, b.Max, s.Bins[i-1].Max, "boundaries must be strictly increasing")
			assert.GreaterOrEqual(t, b.Radius, s.Bins[i-1].Radius, "radius must not decrease")
		}
	}
	assert.Equal(t, valid, total)
	assert.LessOrEqual(t, outlierBins, 1)
	assert.Equal(t, lo, s.Bins[0].Min)
	assert.Equal(t, hi, s.Bins[len(s.Bins)-1].Max)

	limit := max(opts.MinOutlierCount, int(math.Floor(float64(valid)*opts.MaxOutlierPct)))
	assert.LessOrEqual(t, s.OutlierCount, limit)
}

func TestBuild_UniformSample(t *testing.T) {
	values := seq(1, 100)
	s := Build(values, DefaultOptions())
	checkInvariants(t, s, values, DefaultOptions())

	assert.Equal(t, 0, s.OutlierCount)
	require.Len(t, s.Bins, 4)
	for i, b := range s.Bins {
		assert.False(t, b.IsOutlier)
		assert.Equal(t, 25, b.Count)
		if i > 0 {
			assert.Greater(t, b.Radius, s.Bins[i-1].Radius)
		}
	}
	assert.Equal(t, 4.0, s.Bins[0].Radius)
	assert.Equal(t, 24.0, s.Bins[3].Radius)
	assert.InDelta(t, 4+20*math.Pow(1.0/3.0, 1.5), s.Bins[1].Radius, 1e-9)
	assert.Equal(t, "100 values in 4 size classes", s.Description)
}

func TestBuild_AdaptiveBinCount(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{n: 4, expected: 2},
		{n: 36, expected: 2},
		{n: 100, expected: 4},
		{n: 225, expected: 5},
		{n: 10000, expected: 5},
	}

	for _, tt := range tests {
		s := Build(seq(1, tt.n), DefaultOptions())
		assert.Len(t, s.Bins, tt.expected, "n=%d", tt.n)
	}
}

func TestBuild_TukeyOutliers(t *testing.T) {
	values := []float64{1, 2, 3, 100}
	s := Build(values, DefaultOptions())
	checkInvariants(t, s, values, DefaultOptions())

	require.Len(t, s.Bins, 2)
	assert.Equal(t, 1, s.OutlierCount)
	assert.True(t, s.Bins[1].IsOutlier)
	assert.Equal(t, 3, s.Bins[0].Count)
	assert.Equal(t, 1, s.Bins[1].Count)

	assert.True(t, s.IsOutlier(100))
	assert.Equal(t, "#333333", s.Stroke(100))
	assert.Equal(t, 2.0, s.StrokeWidth(100))
	assert.Equal(t, "#ffffff", s.Stroke(2))
	assert.Equal(t, 1.0, s.StrokeWidth(2))
	assert.Equal(t, 24.0, s.Radius(100))
	assert.Equal(t, 4.0, s.Radius(2))
	assert.Equal(t, "> 3", s.Bins[1].Label)
}

func TestBuild_OutlierCapRaisesThreshold(t *testing.T) {
	values := append(seq(1, 80), seq(1000, 1019)...)
	s := Build(values, DefaultOptions())
	checkInvariants(t, s, values, DefaultOptions())

	assert.Equal(t, 5, s.OutlierCount)
	assert.Equal(t, 1014.0, s.Threshold)
	last := s.Bins[len(s.Bins)-1]
	assert.True(t, last.IsOutlier)
	assert.Equal(t, 5, last.Count)
	assert.False(t, s.IsOutlier(1014))
	assert.True(t, s.IsOutlier(1015))
}

func TestBuild_CustomOutlierOptions(t *testing.T) {
	values := append(seq(1, 80), seq(1000, 1019)...)
	opts := DefaultOptions()
	opts.MaxOutlierPct = 0.25

	s := Build(values, opts)
	checkInvariants(t, s, values, opts)
	assert.Equal(t, 20, s.OutlierCount)

	opts.OutlierMultiplier = 100
	s = Build(values, opts)
	assert.Equal(t, 0, s.OutlierCount)
}

func TestBuild_TiesCollapseBoundaries(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 5}
	s := Build(values, DefaultOptions())
	checkInvariants(t, s, values, DefaultOptions())

	t.Run("all equal", func(t *testing.T) {
		s := Build([]float64{5, 5, 5}, DefaultOptions())
		require.Len(t, s.Bins, 1)
		assert.Equal(t, 3, s.Bins[0].Count)
		assert.Equal(t, 4.0, s.Radius(5))
		assert.Equal(t, "5", s.Bins[0].Label)
	})
}

func TestBuild_FiltersInvalidValues(t *testing.T) {
	values := []float64{math.NaN(), 10, math.Inf(1), 20, 30, math.Inf(-1), 40}
	s := Build(values, DefaultOptions())
	checkInvariants(t, s, values, DefaultOptions())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 4.0, s.Radius(math.NaN()))
}

func TestBuild_EmptySampleFallback(t *testing.T) {
	s := Build([]float64{math.NaN()}, DefaultOptions())

	assert.True(t, s.NoData)
	assert.Empty(t, s.Bins)
	assert.Equal(t, 4.0, s.Radius(123))
	assert.Equal(t, "#ffffff", s.Stroke(123))
	assert.Equal(t, 1.0, s.StrokeWidth(123))

	legend := s.Legend()
	require.Len(t, legend, 1)
	assert.Equal(t, "No data", legend[0].Label)
}

func TestScale_RadiusLookup(t *testing.T) {
	s := Build(seq(1, 100), DefaultOptions())

	assert.Equal(t, s.Bins[0].Radius, s.Radius(-50))
	assert.Equal(t, s.Bins[0].Radius, s.Radius(25))
	assert.Equal(t, s.Bins[1].Radius, s.Radius(26))
	assert.Equal(t, s.Bins[3].Radius, s.Radius(100))
	assert.Equal(t, s.Bins[3].Radius, s.Radius(5000))
}

func TestScale_LegendMirrorsBins(t *testing.T) {
	values := []float64{1, 2, 3, 100}
	opts := DefaultOptions()
	opts.Formatter = func(v float64) string { return "v" }

	s := Build(values, opts)
	legend := s.Legend()
	require.Len(t, legend, len(s.Bins))
	for i, e := range legend {
		assert.Equal(t, s.Bins[i].Count, e.Count)
		assert.Equal(t, s.Bins[i].Radius, e.Radius)
	}
	assert.Equal(t, "v – v", legend[0].Label)
}

func TestBuild_LegendMagnitudeLabels(t *testing.T) {
	values := []float64{1200, 2500, 48000, 1500000, 2300000, 2600000}
	s := Build(values, DefaultOptions())

	require.Len(t, s.Bins, 2)
	assert.Equal(t, "1.2k – 774k", s.Bins[0].Label)
	assert.Equal(t, "774k – 2.6M", s.Bins[1].Label)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, quantile(sorted, 0))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.Equal(t, 2.5, quantile(sorted, 0.5))
	assert.Equal(t, 1.75, quantile(sorted, 0.25))
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.9))
}
