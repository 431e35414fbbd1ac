package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/external/wikipedia"
	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/pkg/logger"
	"github.com/wonny/esgpulse/pkg/redis"
)

// ErrNoHistories is returned when not a single ticker produced data
var ErrNoHistories = errors.New("no price histories collected")

// HistoryFetcher returns the daily close history of one symbol
type HistoryFetcher interface {
	FetchCloses(ctx context.Context, symbol, rng string) (contracts.PriceSeries, error)
}

// Collector fans tickers out to a HistoryFetcher and merges the results
// into one date-aligned price table
// ⭐ SSOT: bulk price download orchestration lives here
type Collector struct {
	fetcher HistoryFetcher
	cache   *redis.Cache
	logger  *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int    // Number of concurrent workers
	Range   string // Yahoo range, e.g. "5y"
}

// NewCollector creates a new Collector. cache may be nil.
func NewCollector(fetcher HistoryFetcher, cache *redis.Cache, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		cache:   cache,
		logger:  log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of one ticker fetch
type FetchResult struct {
	Ticker     string
	Symbol     string
	PriceCount int
	Cached     bool
	Error      error
}

type job struct {
	index  int
	ticker string
}

// Collect downloads every ticker and returns the merged table. Columns keep
// the input ticker order, named by Yahoo symbol. Tickers without data are
// logged and omitted.
func (c *Collector) Collect(ctx context.Context, tickers []string, cfg Config) (*pricetable.Table, []FetchResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"range":   cfg.Range,
		"workers": workers,
	}).Info("Starting price collection")

	series := make([]contracts.PriceSeries, len(tickers))
	results := make([]FetchResult, len(tickers))

	jobCh := make(chan job, len(tickers))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				s, res := c.fetchOne(ctx, workerID, j.ticker, cfg.Range)
				series[j.index] = s
				results[j.index] = res
			}
		}(i)
	}

	for i, t := range tickers {
		jobCh <- job{index: i, ticker: t}
	}
	close(jobCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, results, err
	}

	table := pricetable.New()
	successCount := 0
	failCount := 0
	for i, res := range results {
		if res.Error != nil {
			failCount++
			continue
		}
		table.AddSeries(series[i])
		successCount++
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"days":    table.NumRows(),
	}).Info("Price collection completed")

	if successCount == 0 {
		return nil, results, ErrNoHistories
	}

	return table, results, nil
}

// fetchOne resolves one ticker through the cache, falling back to the fetcher
func (c *Collector) fetchOne(ctx context.Context, workerID int, ticker, rng string) (contracts.PriceSeries, FetchResult) {
	symbol := wikipedia.YahooSymbol(ticker)
	res := FetchResult{Ticker: ticker, Symbol: symbol}

	if err := ctx.Err(); err != nil {
		res.Error = err
		return contracts.PriceSeries{}, res
	}

	key := redis.HistoryKey(symbol, rng)

	var points []contracts.PricePoint
	found, err := c.cache.Get(ctx, key, &points)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Cache read failed")
	}
	if found && len(points) > 0 {
		res.PriceCount = len(points)
		res.Cached = true
		return contracts.PriceSeries{Ticker: symbol, Points: points}, res
	}

	s, err := c.fetcher.FetchCloses(ctx, symbol, rng)
	if err == nil && s.Len() == 0 {
		err = fmt.Errorf("%s: empty history", symbol)
	}
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": ticker,
			"symbol": symbol,
		}).Warn("No price data, ticker omitted")
		res.Error = err
		return contracts.PriceSeries{}, res
	}
	s.Ticker = symbol

	if err := c.cache.Set(ctx, key, s.Points, 0); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Cache write failed")
	}

	c.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"symbol": symbol,
		"count":  s.Len(),
	}).Debug("Fetched prices")

	res.PriceCount = s.Len()
	return s, res
}
