package profile

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/risk"
	"github.com/wonny/esgpulse/internal/sector"
)

func TestDefault_MatchesEngineDefaults(t *testing.T) {
	p := Default()

	require.NoError(t, Validate(p))
	assert.Equal(t, risk.DefaultConfig(), p.RiskConfig())
	assert.Equal(t, sector.DefaultSectors, p.Sectors)
}

func TestParse_PartialOverridesKeepDefaults(t *testing.T) {
	p, err := Parse([]byte(`
meta:
  profile_id: high_rates
metrics:
  risk_free_rate: 0.05
sectors: [Technology, Energy]
`))
	require.NoError(t, err)

	assert.Equal(t, "high_rates", p.Meta.ProfileID)
	assert.Equal(t, 0.05, p.Metrics.RiskFreeRate)
	assert.Equal(t, 252, p.Metrics.TradingDays)
	assert.Equal(t, 30, p.Metrics.MinReturns)
	assert.Equal(t, []string{"Technology", "Energy"}, p.Sectors)
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("metrics:\n  risk_free_rat: 0.05\n"))
	assert.Error(t, err)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"min returns", "metrics:\n  min_returns: 1\n", "metrics.min_returns"},
		{"epsilon", "metrics:\n  epsilon: 0\n", "metrics.epsilon"},
		{"percentile", "metrics:\n  var99_percentile: 101\n", "metrics.var99_percentile"},
		{"duplicate sector", "sectors: [Energy, Energy]\n", "sectors"},
		{"empty id", "meta:\n  profile_id: \"\"\n", "meta.profile_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, _ := Hash(Default())

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Metrics.RiskFreeRate = 0.03
	h3, _ := Hash(changed)
	assert.NotEqual(t, h1, h3)
}

func TestLoad_ShippedProfile(t *testing.T) {
	path := "../../config/profile.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("profile file not found")
	}

	p, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, Default().RiskConfig(), p.RiskConfig())
}
