package risk

import (
	"fmt"
	"math"

	"github.com/wonny/esgpulse/internal/contracts"
)

// =============================================================================
// Engine - pure metric calculator
// =============================================================================

// Engine computes the MetricBundle of a price series
// ⭐ SSOT: no I/O here. Loading and skipping are the pipeline's job
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given constants
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the constants the engine was built with
func (e *Engine) Config() Config {
	return e.cfg
}

// Compute derives the metrics of a series whose points are in date order
func (e *Engine) Compute(series contracts.PriceSeries) (contracts.MetricBundle, error) {
	return e.ComputeFromPrices(series.Prices())
}

// ComputeFromPrices derives the metrics from chronologically ordered prices.
// Returns ErrInsufficientHistory when fewer than MinReturns returns exist.
func (e *Engine) ComputeFromPrices(prices []float64) (contracts.MetricBundle, error) {
	returns := DailyReturns(prices)
	if len(returns) < e.cfg.MinReturns {
		return contracts.MetricBundle{}, fmt.Errorf("%w: got %d returns, need %d",
			ErrInsufficientHistory, len(returns), e.cfg.MinReturns)
	}

	annualFactor := float64(e.cfg.TradingDays)
	sqrtFactor := math.Sqrt(annualFactor)

	annReturn := Mean(returns) * annualFactor
	volatility := StdDev(returns) * sqrtFactor
	excess := annReturn - e.cfg.RiskFreeRate

	sharpe := excess / (volatility + e.cfg.Epsilon)

	// Fewer than two negative returns have no sample deviation; StdDev
	// reports 0 and sortino degenerates to excess/epsilon.
	downsideDev := StdDev(Negatives(returns)) * sqrtFactor
	sortino := excess / (downsideDev + e.cfg.Epsilon)

	maxDD := MaxDrawdown(returns)

	sorted := SortedCopy(returns)
	var95 := Percentile(sorted, e.cfg.VaR95Percentile)
	var99 := Percentile(sorted, e.cfg.VaR99Percentile)

	bundle := contracts.MetricBundle{
		AnnualizedReturn:    annReturn,
		Volatility:          volatility,
		SharpeRatio:         sharpe,
		SortinoRatio:        sortino,
		MaxDrawdown:         maxDD,
		VaR95:               var95,
		VaR99:               var99,
		TailRisk:            math.Abs(var99) * 100,
		SurvivalProbability: e.cfg.SurvivalBase + sharpe*e.cfg.SurvivalSlope,
		RecoveryDays:        recoveryDays(maxDD),
	}

	for _, v := range bundle.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return contracts.MetricBundle{}, ErrNonFinite
		}
	}

	return bundle, nil
}

// recoveryDays is a rough proxy: two days per percentage point of drawdown
func recoveryDays(maxDrawdown float64) int {
	return int(math.Abs(maxDrawdown) * 100 * 2)
}
