package collector

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/pkg/logger"
)

type fakeFetcher struct {
	mu      sync.Mutex
	data    map[string][]float64
	calls   []string
	baseDay time.Time
}

func (f *fakeFetcher) FetchCloses(ctx context.Context, symbol, rng string) (contracts.PriceSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()

	prices, ok := f.data[symbol]
	if !ok {
		return contracts.PriceSeries{}, errors.New("not found")
	}
	points := make([]contracts.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = contracts.PricePoint{Date: f.baseDay.AddDate(0, 0, i), Price: p}
	}
	return contracts.PriceSeries{Ticker: symbol, Points: points}, nil
}

func TestCollect_PreservesOrderAndOmitsMissing(t *testing.T) {
	fetcher := &fakeFetcher{
		baseDay: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		data: map[string][]float64{
			"MSFT":  {10, 11, 12},
			"BRK-B": {100, 101},
			"AAPL":  {1, 2, 3, 4},
		},
	}

	c := NewCollector(fetcher, nil, logger.Nop())
	table, results, err := c.Collect(context.Background(), []string{"MSFT", "GONE", "BRK.B", "AAPL"}, Config{Workers: 3, Range: "5y"})
	require.NoError(t, err)

	assert.Equal(t, []string{"MSFT", "BRK-B", "AAPL"}, table.Tickers)
	assert.Equal(t, 4, table.NumRows())

	require.Len(t, results, 4)
	assert.Error(t, results[1].Error)
	assert.Equal(t, "BRK-B", results[2].Symbol)
	assert.Equal(t, 2, results[2].PriceCount)

	// BRK-B has no data on the last two days
	assert.True(t, math.IsNaN(table.Columns[1][3]))
	assert.Len(t, fetcher.calls, 4)
}

func TestCollect_NoData(t *testing.T) {
	c := NewCollector(&fakeFetcher{data: map[string][]float64{}}, nil, logger.Nop())

	_, _, err := c.Collect(context.Background(), []string{"A", "B"}, Config{Workers: 2})
	assert.ErrorIs(t, err, ErrNoHistories)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&fakeFetcher{data: map[string][]float64{"A": {1, 2}}}, nil, logger.Nop())

	_, _, err := c.Collect(ctx, []string{"A"}, Config{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

type listTickers []string

func (l listTickers) FetchSP500Tickers(ctx context.Context) ([]string, error) {
	if l == nil {
		return nil, errors.New("unavailable")
	}
	return l, nil
}

func TestCachedTickers_PassThroughWithoutCache(t *testing.T) {
	tickers, err := NewCachedTickers(listTickers{"AAPL", "MSFT"}, nil, logger.Nop()).FetchSP500Tickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	_, err = NewCachedTickers(listTickers(nil), nil, logger.Nop()).FetchSP500Tickers(context.Background())
	assert.Error(t, err)
}
