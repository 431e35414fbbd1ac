package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/pkg/config"
)

func TestSplitTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "BRK.B", "MSFT"}, splitTickers(" aapl, BRK.B ,,msft"))
	assert.Empty(t, splitTickers(""))
}

func TestRootHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"process", "tickers", "download", "upload", "api", "scheduler"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestUploadSQLOnly(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"upload", "--sql-only"})
	defer func() {
		rootCmd.SetArgs(nil)
		uploadSQLOnly = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "CREATE TABLE IF NOT EXISTS stock_prices")
	assert.Contains(t, out.String(), "ENABLE ROW LEVEL SECURITY")
}

func TestLoadProfile(t *testing.T) {
	cfg := &config.Config{Pipeline: config.PipelineConfig{RiskFreeRate: 0.04, TradingDays: 252, MinReturns: 60}}

	p, err := loadProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.04, p.Metrics.RiskFreeRate)
	assert.Equal(t, 60, p.Metrics.MinReturns)

	cfg.Pipeline.ProfileFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = loadProfile(cfg)
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, []string{"Quartile", "Companies"}, [][]string{{"Q1", "12"}, {"Q4", "3"}})

	out := buf.String()
	assert.Contains(t, out, "QUARTILE")
	assert.Contains(t, out, "Q1")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "Q4")
}
