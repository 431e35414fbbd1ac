package logger_test

import (
	"errors"

	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Info("Loading price data")
	log.WithFields(map[string]interface{}{
		"ticker":  "MMM",
		"returns": 12,
	}).Debug("Insufficient history, skipping")
	log.WithError(errors.New("file not found")).Warn("Using full synthetic ESG generation")
}
