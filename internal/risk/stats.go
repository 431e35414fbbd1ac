package risk

import (
	"math"
	"sort"
)

// =============================================================================
// Statistics utilities
// =============================================================================

// DailyReturns converts prices into simple returns p[t]/p[t-1]-1.
// The first (undefined) return is dropped, so len(result) == len(prices)-1.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two values have no sample deviation and yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// Negatives returns the strictly negative values
func Negatives(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// Percentile returns the p-th percentile (0-100) of sorted values,
// interpolating linearly between the surrounding order statistics.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SortedCopy returns an ascending copy of values
func SortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// MaxDrawdown returns the deepest peak-to-trough decline of the cumulative
// return curve built from returns. The result is always <= 0.
func MaxDrawdown(returns []float64) float64 {
	cum := 1.0
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := (cum - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
