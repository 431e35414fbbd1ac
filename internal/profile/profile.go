package profile

import (
	"github.com/wonny/esgpulse/internal/risk"
	"github.com/wonny/esgpulse/internal/sector"
)

// Profile is the versioned set of constants a dataset is computed with
type Profile struct {
	Meta    Meta     `yaml:"meta" json:"meta"`
	Metrics Metrics  `yaml:"metrics" json:"metrics"`
	Sectors []string `yaml:"sectors" json:"sectors"`
}

// Meta identifies a profile
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Metrics mirrors risk.Config
type Metrics struct {
	RiskFreeRate    float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	Epsilon         float64 `yaml:"epsilon" json:"epsilon"`
	TradingDays     int     `yaml:"trading_days" json:"trading_days"`
	MinReturns      int     `yaml:"min_returns" json:"min_returns"`
	VaR95Percentile float64 `yaml:"var95_percentile" json:"var95_percentile"`
	VaR99Percentile float64 `yaml:"var99_percentile" json:"var99_percentile"`
	SurvivalBase    float64 `yaml:"survival_base" json:"survival_base"`
	SurvivalSlope   float64 `yaml:"survival_slope" json:"survival_slope"`
}

// Default returns the built-in profile
func Default() *Profile {
	rc := risk.DefaultConfig()
	return &Profile{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Metrics: Metrics{
			RiskFreeRate:    rc.RiskFreeRate,
			Epsilon:         rc.Epsilon,
			TradingDays:     rc.TradingDays,
			MinReturns:      rc.MinReturns,
			VaR95Percentile: rc.VaR95Percentile,
			VaR99Percentile: rc.VaR99Percentile,
			SurvivalBase:    rc.SurvivalBase,
			SurvivalSlope:   rc.SurvivalSlope,
		},
		Sectors: append([]string(nil), sector.DefaultSectors...),
	}
}

// RiskConfig converts the metric constants for the engine
func (p *Profile) RiskConfig() risk.Config {
	return risk.Config{
		RiskFreeRate:    p.Metrics.RiskFreeRate,
		Epsilon:         p.Metrics.Epsilon,
		TradingDays:     p.Metrics.TradingDays,
		MinReturns:      p.Metrics.MinReturns,
		VaR95Percentile: p.Metrics.VaR95Percentile,
		VaR99Percentile: p.Metrics.VaR99Percentile,
		SurvivalBase:    p.Metrics.SurvivalBase,
		SurvivalSlope:   p.Metrics.SurvivalSlope,
	}
}
