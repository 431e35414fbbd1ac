package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/logger"
)

var (
	// Global flags
	verbose   bool
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esgpulse",
	Short: "ESG risk/return dataset builder",
	Long: `esgpulse builds the ESG risk/return dataset behind the dashboard.

Prices are turned into per-ticker risk metrics, merged with ESG scores,
bucketed into ESG quartiles and written as one JSON document.

Usage:
  go run ./cmd/esgpulse [command]

Examples:
  go run ./cmd/esgpulse process
  go run ./cmd/esgpulse download --range 5y
  go run ./cmd/esgpulse upload --sql-only
  go run ./cmd/esgpulse api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (console|json)")
}

// bootstrap loads config and builds the logger with global flags applied
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	return cfg, logger.New(cfg), nil
}
