package contracts

// MetricBundle holds the risk/return statistics of one ticker
// ⭐ SSOT: produced once by risk.Engine, never mutated afterwards
type MetricBundle struct {
	AnnualizedReturn    float64 `json:"annualizedReturn"`
	Volatility          float64 `json:"volatility"`
	SharpeRatio         float64 `json:"sharpeRatio"`
	SortinoRatio        float64 `json:"sortinoRatio"`
	MaxDrawdown         float64 `json:"maxDrawdown"` // <= 0
	VaR95               float64 `json:"var95"`       // 5th percentile of daily returns (loss negative)
	VaR99               float64 `json:"var99"`       // 1st percentile of daily returns
	TailRisk            float64 `json:"tailRisk"`    // |var99| * 100
	SurvivalProbability float64 `json:"survivalProbability"`
	RecoveryDays        int     `json:"recoveryDays"`
}

// QuartileAggregate is the per-field mean of the MetricBundles in one quartile.
// RecoveryDays is a mean here and therefore fractional.
type QuartileAggregate struct {
	AnnualizedReturn    float64 `json:"annualizedReturn"`
	Volatility          float64 `json:"volatility"`
	SharpeRatio         float64 `json:"sharpeRatio"`
	SortinoRatio        float64 `json:"sortinoRatio"`
	MaxDrawdown         float64 `json:"maxDrawdown"`
	VaR95               float64 `json:"var95"`
	VaR99               float64 `json:"var99"`
	TailRisk            float64 `json:"tailRisk"`
	SurvivalProbability float64 `json:"survivalProbability"`
	RecoveryDays        float64 `json:"recoveryDays"`
}

// Values returns the fields in declaration order
func (m MetricBundle) Values() []float64 {
	return []float64{
		m.AnnualizedReturn,
		m.Volatility,
		m.SharpeRatio,
		m.SortinoRatio,
		m.MaxDrawdown,
		m.VaR95,
		m.VaR99,
		m.TailRisk,
		m.SurvivalProbability,
		float64(m.RecoveryDays),
	}
}
