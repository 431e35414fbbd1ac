package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyReturns(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{"empty", nil, []float64{}},
		{"single price", []float64{100}, []float64{}},
		{"up then down", []float64{100, 110, 99}, []float64{0.1, -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyReturns(tt.prices)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestStdDev_UsesSampleFormula(t *testing.T) {
	// population stddev would be sqrt(1.25)
	assert.InDelta(t, math.Sqrt(5.0/3.0), StdDev([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, StdDev([]float64{-0.02}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 1.2, Percentile(sorted, 5), 1e-12)
	assert.InDelta(t, 1.04, Percentile(sorted, 1), 1e-12)
	assert.InDelta(t, 3.0, Percentile(sorted, 50), 1e-12)
	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 5.0, Percentile(sorted, 100))
	assert.Equal(t, 0.0, Percentile(nil, 5))
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"no returns", nil, 0},
		{"only gains", []float64{0.01, 0.02, 0.03}, 0},
		{"halved after peak", []float64{0.1, -0.5, 0.2}, -0.5},
		{"loss from first day", []float64{-0.1, -0.1}, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.returns)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestNegatives(t *testing.T) {
	assert.Equal(t, []float64{-0.1, -0.3}, Negatives([]float64{0.2, -0.1, 0, -0.3}))
	assert.Empty(t, Negatives([]float64{0, 0.1}))
}
