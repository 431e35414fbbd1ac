package risk

import "errors"

// =============================================================================
// Engine configuration
// =============================================================================

// ErrInsufficientHistory is returned when a series has fewer daily returns
// than Config.MinReturns. Callers skip the ticker.
var ErrInsufficientHistory = errors.New("insufficient price history")

// ErrNonFinite is returned when a computed metric is NaN or ±Inf
var ErrNonFinite = errors.New("non-finite metric")

// Config holds every constant the metric formulas depend on
// ⭐ SSOT: passed into the engine explicitly so tests can override it
type Config struct {
	RiskFreeRate float64 // annual, e.g. 0.02
	Epsilon      float64 // added to ratio denominators
	TradingDays  int     // annualisation factor
	MinReturns   int     // fewer daily returns -> ErrInsufficientHistory

	VaR95Percentile float64 // percentile (0-100) of the return distribution
	VaR99Percentile float64

	SurvivalBase  float64 // survivalProbability = base + sharpe*slope
	SurvivalSlope float64
}

// DefaultConfig returns the reference constants
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:    0.02,
		Epsilon:         1e-6,
		TradingDays:     252,
		MinReturns:      30,
		VaR95Percentile: 5,
		VaR99Percentile: 1,
		SurvivalBase:    0.95,
		SurvivalSlope:   0.02,
	}
}
