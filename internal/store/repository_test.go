package store

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/database"
	"github.com/wonny/esgpulse/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestChunk(t *testing.T) {
	rows := make([]pricetable.Row, 7)
	for i := range rows {
		rows[i] = pricetable.Row{Date: day(i + 1)}
	}

	chunks := Chunk(rows, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[2], 1)
	assert.Equal(t, day(7), chunks[2][0].Date)

	assert.Len(t, Chunk(rows, 0), 1)
	assert.Empty(t, Chunk(nil, 50))
}

func TestEncodePrices_DropsNonFinite(t *testing.T) {
	data, err := EncodePrices(map[string]float64{
		"AAPL": 185.5,
		"BAD":  math.NaN(),
		"INF":  math.Inf(1),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"AAPL":185.5}`, string(data))
}

func TestDecodePrices(t *testing.T) {
	prices, err := DecodePrices([]byte(`{"AAPL":185.5,"MSFT":null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 185.5}, prices)

	_, err = DecodePrices([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestPriceRepository_RoundTrip(t *testing.T) {
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	repo := NewPriceRepository(db.Pool, logger.Nop())
	require.NoError(t, repo.EnsureSchema(ctx))

	rows := []pricetable.Row{
		{Date: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), Prices: map[string]float64{"ZZTEST": 10}},
		{Date: time.Date(1990, 1, 3, 0, 0, 0, 0, time.UTC), Prices: map[string]float64{"ZZTEST": 11}},
	}
	defer db.Pool.Exec(context.Background(), `DELETE FROM stock_prices WHERE date < '1991-01-01'`)

	result, err := repo.UpsertRows(ctx, rows, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 2, result.Batches)

	table, err := repo.LoadTable(ctx)
	require.NoError(t, err)
	assert.Contains(t, table.Tickers, "ZZTEST")
}
