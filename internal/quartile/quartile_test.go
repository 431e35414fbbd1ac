package quartile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/contracts"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		total float64
		want  contracts.Quartile
	}{
		{100, contracts.Q1},
		{80.0, contracts.Q1},
		{79.999, contracts.Q2},
		{65.0, contracts.Q2},
		{64.999, contracts.Q3},
		{50.0, contracts.Q3},
		{49.999, contracts.Q4},
		{0, contracts.Q4},
		{-5, contracts.Q4},
		{math.NaN(), contracts.Q4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.total), "total=%v", tt.total)
	}
}

func company(q contracts.Quartile, ret float64, days int) contracts.Company {
	return contracts.Company{
		Ticker:   string(q),
		Quartile: q,
		Metrics: contracts.MetricBundle{
			AnnualizedReturn: ret,
			Volatility:       ret * 2,
			MaxDrawdown:      -ret,
			RecoveryDays:     days,
		},
	}
}

func TestAggregate(t *testing.T) {
	companies := []contracts.Company{
		company(contracts.Q1, 0.10, 10),
		company(contracts.Q1, 0.20, 15),
		company(contracts.Q2, 0.05, 4),
		company(contracts.Q3, -0.10, 30),
	}

	agg := Aggregate(companies)
	require.Len(t, agg, 4)

	q1 := agg[contracts.Q1]
	assert.InDelta(t, 0.15, q1.AnnualizedReturn, 1e-12)
	assert.InDelta(t, 0.30, q1.Volatility, 1e-12)
	assert.InDelta(t, -0.15, q1.MaxDrawdown, 1e-12)
	assert.Equal(t, 12.5, q1.RecoveryDays)

	assert.InDelta(t, 0.05, agg[contracts.Q2].AnnualizedReturn, 1e-12)
	assert.Equal(t, 30.0, agg[contracts.Q3].RecoveryDays)
}

func TestAggregate_EmptyQuartileIsZero(t *testing.T) {
	agg := Aggregate([]contracts.Company{company(contracts.Q1, 0.1, 3)})

	q4, ok := agg[contracts.Q4]
	require.True(t, ok, "Q4 key must be present")
	assert.Equal(t, contracts.QuartileAggregate{}, q4)
}

func TestAggregate_NoCompanies(t *testing.T) {
	agg := Aggregate(nil)
	require.Len(t, agg, 4)
	for _, q := range contracts.Quartiles {
		assert.Equal(t, contracts.QuartileAggregate{}, agg[q])
	}
}
