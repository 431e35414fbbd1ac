package quartile

import (
	"github.com/wonny/esgpulse/internal/contracts"
)

// Aggregate averages every metric field per quartile. All four quartiles are
// always present; an empty quartile gets an all-zero aggregate.
func Aggregate(companies []contracts.Company) map[contracts.Quartile]contracts.QuartileAggregate {
	sums := make(map[contracts.Quartile]*contracts.QuartileAggregate, len(contracts.Quartiles))
	counts := make(map[contracts.Quartile]int, len(contracts.Quartiles))
	for _, q := range contracts.Quartiles {
		sums[q] = &contracts.QuartileAggregate{}
	}

	for _, c := range companies {
		s, ok := sums[c.Quartile]
		if !ok {
			continue
		}
		m := c.Metrics
		s.AnnualizedReturn += m.AnnualizedReturn
		s.Volatility += m.Volatility
		s.SharpeRatio += m.SharpeRatio
		s.SortinoRatio += m.SortinoRatio
		s.MaxDrawdown += m.MaxDrawdown
		s.VaR95 += m.VaR95
		s.VaR99 += m.VaR99
		s.TailRisk += m.TailRisk
		s.SurvivalProbability += m.SurvivalProbability
		s.RecoveryDays += float64(m.RecoveryDays)
		counts[c.Quartile]++
	}

	out := make(map[contracts.Quartile]contracts.QuartileAggregate, len(contracts.Quartiles))
	for _, q := range contracts.Quartiles {
		n := counts[q]
		if n == 0 {
			out[q] = contracts.QuartileAggregate{}
			continue
		}
		s := sums[q]
		f := float64(n)
		out[q] = contracts.QuartileAggregate{
			AnnualizedReturn:    s.AnnualizedReturn / f,
			Volatility:          s.Volatility / f,
			SharpeRatio:         s.SharpeRatio / f,
			SortinoRatio:        s.SortinoRatio / f,
			MaxDrawdown:         s.MaxDrawdown / f,
			VaR95:               s.VaR95 / f,
			VaR99:               s.VaR99 / f,
			TailRisk:            s.TailRisk / f,
			SurvivalProbability: s.SurvivalProbability / f,
			RecoveryDays:        s.RecoveryDays / f,
		}
	}

	return out
}
