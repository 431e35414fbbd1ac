package config_test

import (
	"fmt"

	"github.com/wonny/esgpulse/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Prices: %s\n", cfg.Pipeline.PriceCSV)
	fmt.Printf("ESG reference: %s\n", cfg.Pipeline.ESGCSV)
	fmt.Printf("Output: %s\n", cfg.Pipeline.OutputJSON)
	fmt.Printf("Risk-free rate: %.3f\n", cfg.Pipeline.RiskFreeRate)
}
