package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPrices(n int, price float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return prices
}

func compoundingPrices(n int, start, dailyRate float64) []float64 {
	prices := make([]float64, n)
	prices[0] = start
	for i := 1; i < n; i++ {
		prices[i] = prices[i-1] * (1 + dailyRate)
	}
	return prices
}

func TestEngine_FlatSeries(t *testing.T) {
	e := NewEngine(DefaultConfig())

	m, err := e.ComputeFromPrices(flatPrices(40, 50))
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.AnnualizedReturn)
	assert.Equal(t, 0.0, m.Volatility)
	assert.InDelta(t, -20000.0, m.SharpeRatio, 1e-6)
	assert.InDelta(t, -20000.0, m.SortinoRatio, 1e-6)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0.0, m.VaR95)
	assert.Equal(t, 0.0, m.VaR99)
	assert.Equal(t, 0.0, m.TailRisk)
	assert.InDelta(t, 0.95-400, m.SurvivalProbability, 1e-6)
	assert.Equal(t, 0, m.RecoveryDays)
}

func TestEngine_MonotonicIncrease(t *testing.T) {
	e := NewEngine(DefaultConfig())

	m, err := e.ComputeFromPrices(compoundingPrices(41, 100, 0.01))
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0, m.RecoveryDays)
	assert.InDelta(t, 2.52, m.AnnualizedReturn, 1e-9)

	// no negative returns: downside deviation falls back to 0
	assert.InDelta(t, (m.AnnualizedReturn-0.02)/1e-6, m.SortinoRatio, 1e-3)
	assert.False(t, math.IsInf(m.SortinoRatio, 0))
	assert.False(t, math.IsNaN(m.SortinoRatio))
}

func TestEngine_MinimumHistory(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// 31 prices -> 30 returns: accepted
	_, err := e.ComputeFromPrices(compoundingPrices(31, 10, 0.002))
	require.NoError(t, err)

	// 30 prices -> 29 returns: rejected
	_, err = e.ComputeFromPrices(compoundingPrices(30, 10, 0.002))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))

	_, err = e.ComputeFromPrices(nil)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}

func TestEngine_Drawdown(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// returns: +10%, -50%, then 30 flat days
	prices := append([]float64{100, 110}, flatPrices(31, 55)...)

	m, err := e.ComputeFromPrices(prices)
	require.NoError(t, err)

	assert.InDelta(t, -0.5, m.MaxDrawdown, 1e-12)
	assert.Equal(t, 100, m.RecoveryDays)

	// 32 returns sorted: [-0.5, 0 x30, 0.1]; 1st percentile idx = 0.31
	assert.InDelta(t, -0.5*0.69, m.VaR99, 1e-9)
	assert.InDelta(t, 34.5, m.TailRisk, 1e-7)
	// 5th percentile idx = 1.55 -> both neighbours are 0
	assert.InDelta(t, 0.0, m.VaR95, 1e-12)

	// single negative return: no sample downside deviation
	assert.InDelta(t, (m.AnnualizedReturn-0.02)/1e-6, m.SortinoRatio, 1e-3)
	assert.InDelta(t, 0.95+m.SharpeRatio*0.02, m.SurvivalProbability, 1e-12)
}

func TestEngine_Properties(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for _, n := range []int{31, 60, 252} {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i)*0.05
		}

		m, err := e.ComputeFromPrices(prices)
		require.NoError(t, err)
		assert.LessOrEqual(t, m.MaxDrawdown, 0.0)
		assert.GreaterOrEqual(t, m.Volatility, 0.0)
		assert.LessOrEqual(t, m.VaR99, m.VaR95)
		assert.Equal(t, math.Abs(m.VaR99)*100, m.TailRisk)
	}
}

func TestEngine_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RiskFreeRate = 0
	cfg.MinReturns = 5

	e := NewEngine(cfg)
	assert.Equal(t, cfg, e.Config())

	m, err := e.ComputeFromPrices(flatPrices(6, 20))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, 0.95, m.SurvivalProbability)
}

func TestRecoveryDays(t *testing.T) {
	assert.Equal(t, 40, recoveryDays(-0.2))
	assert.Equal(t, 7, recoveryDays(-0.035))
	assert.Equal(t, 0, recoveryDays(0))
}
