package collector

import (
	"context"

	"github.com/wonny/esgpulse/pkg/logger"
	"github.com/wonny/esgpulse/pkg/redis"
)

// TickerLister returns the ticker universe
type TickerLister interface {
	FetchSP500Tickers(ctx context.Context) ([]string, error)
}

// CachedTickers serves the ticker list from Redis when present
type CachedTickers struct {
	source TickerLister
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedTickers wraps source with cache. cache may be nil.
func NewCachedTickers(source TickerLister, cache *redis.Cache, log *logger.Logger) *CachedTickers {
	return &CachedTickers{source: source, cache: cache, logger: log}
}

// FetchSP500Tickers implements TickerLister
func (c *CachedTickers) FetchSP500Tickers(ctx context.Context) ([]string, error) {
	var tickers []string
	found, err := c.cache.Get(ctx, redis.TickersKey(), &tickers)
	if err != nil {
		c.logger.WithError(err).Warn("Ticker cache read failed")
	}
	if found && len(tickers) > 0 {
		c.logger.WithField("count", len(tickers)).Debug("Tickers served from cache")
		return tickers, nil
	}

	tickers, err = c.source.FetchSP500Tickers(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, redis.TickersKey(), tickers, 0); err != nil {
		c.logger.WithError(err).Warn("Ticker cache write failed")
	}
	return tickers, nil
}
