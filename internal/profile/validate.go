package profile

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(p *Profile) error {
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	m := p.Metrics
	if math.IsNaN(m.RiskFreeRate) || math.IsInf(m.RiskFreeRate, 0) {
		return ValidationError{"metrics.risk_free_rate", "must be finite"}
	}
	if m.Epsilon <= 0 {
		return ValidationError{"metrics.epsilon", "must be > 0"}
	}
	if m.TradingDays <= 0 {
		return ValidationError{"metrics.trading_days", "must be > 0"}
	}
	if m.MinReturns < 2 {
		return ValidationError{"metrics.min_returns", "must be >= 2"}
	}
	if m.VaR95Percentile < 0 || m.VaR95Percentile > 100 {
		return ValidationError{"metrics.var95_percentile", "must be in [0, 100]"}
	}
	if m.VaR99Percentile < 0 || m.VaR99Percentile > 100 {
		return ValidationError{"metrics.var99_percentile", "must be in [0, 100]"}
	}

	if len(p.Sectors) == 0 {
		return ValidationError{"sectors", "at least one sector required"}
	}
	seen := make(map[string]bool, len(p.Sectors))
	for _, s := range p.Sectors {
		if strings.TrimSpace(s) == "" {
			return ValidationError{"sectors", "empty sector label"}
		}
		if seen[s] {
			return ValidationError{"sectors", fmt.Sprintf("duplicate sector %q", s)}
		}
		seen[s] = true
	}

	return nil
}
