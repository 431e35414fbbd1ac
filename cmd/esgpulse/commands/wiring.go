package commands

import (
	"context"
	"fmt"

	"github.com/wonny/esgpulse/internal/collector"
	"github.com/wonny/esgpulse/internal/external/wikipedia"
	"github.com/wonny/esgpulse/internal/external/yahoo"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/internal/profile"
	"github.com/wonny/esgpulse/internal/risk"
	"github.com/wonny/esgpulse/internal/sector"
	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/httputil"
	"github.com/wonny/esgpulse/pkg/logger"
	"github.com/wonny/esgpulse/pkg/redis"
)

// loadProfile returns the profile file when configured, else the defaults
// with the env metric constants applied
func loadProfile(cfg *config.Config) (*profile.Profile, error) {
	if cfg.Pipeline.ProfileFile != "" {
		p, _, err := profile.Load(cfg.Pipeline.ProfileFile)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", cfg.Pipeline.ProfileFile, err)
		}
		return p, nil
	}

	p := profile.Default()
	p.Metrics.RiskFreeRate = cfg.Pipeline.RiskFreeRate
	p.Metrics.TradingDays = cfg.Pipeline.TradingDays
	p.Metrics.MinReturns = cfg.Pipeline.MinReturns
	return p, profile.Validate(p)
}

// newPipeline builds the orchestrator from the active profile
func newPipeline(cfg *config.Config, log *logger.Logger) (*pipeline.Pipeline, error) {
	p, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}

	hash, err := profile.Hash(p)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"profile": p.Meta.ProfileID,
		"version": p.Meta.Version,
		"hash":    hash[:12],
	}).Info("Using pipeline profile")

	return pipeline.New(risk.NewEngine(p.RiskConfig()), sector.NewAssigner(p.Sectors), log), nil
}

// downloadDeps bundles the clients the download path needs
type downloadDeps struct {
	tickers   *collector.CachedTickers
	collector *collector.Collector
	redis     *redis.Client
}

func (d *downloadDeps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

// newDownloadDeps wires HTTP, Redis, Wikipedia, Yahoo and the collector.
// An unreachable Redis degrades to no caching.
func newDownloadDeps(ctx context.Context, cfg *config.Config, log *logger.Logger) *downloadDeps {
	httpClient := httputil.New(cfg, log)

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, downloading without cache")
		cfg.Redis.Enabled = false
		rdb, _ = redis.New(ctx, cfg)
	}
	cache := redis.NewCache(rdb, "esgpulse")

	wiki := wikipedia.NewClient(httpClient, log, cfg.Wikipedia.SP500URL)
	yf := yahoo.NewClient(httpClient, log, cfg.Yahoo.BaseURL)

	return &downloadDeps{
		tickers:   collector.NewCachedTickers(wiki, cache, log),
		collector: collector.NewCollector(yf, cache, log),
		redis:     rdb,
	}
}
