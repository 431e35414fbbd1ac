package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/internal/collector"
	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/internal/risk"
	"github.com/wonny/esgpulse/internal/sector"
	"github.com/wonny/esgpulse/internal/store"
	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/logger"
)

type staticTickers []string

func (s staticTickers) FetchSP500Tickers(ctx context.Context) ([]string, error) {
	if len(s) == 0 {
		return nil, errors.New("page down")
	}
	return s, nil
}

type tableCollector struct{}

func (tableCollector) Collect(ctx context.Context, tickers []string, cfg collector.Config) (*pricetable.Table, []collector.FetchResult, error) {
	table := pricetable.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for k, ticker := range tickers {
		points := make([]contracts.PricePoint, 40)
		for i := range points {
			// alternating moves keep volatility non-zero
			price := 100 + float64(i) + float64(k)
			if i%2 == 1 {
				price -= 0.5
			}
			points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Price: price}
		}
		table.AddSeries(contracts.PriceSeries{Ticker: ticker, Points: points})
	}
	return table, nil, nil
}

type recordingSink struct {
	rows int
}

func (s *recordingSink) UpsertRows(ctx context.Context, rows []pricetable.Row, batchSize int) (store.UploadResult, error) {
	s.rows += len(rows)
	return store.UploadResult{Uploaded: len(rows)}, nil
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Schedule:        "0 30 22 * * 1-5",
		UploadBatchSize: 50,
		Download:        config.DownloadConfig{Workers: 2, Range: "5y"},
		Pipeline: config.PipelineConfig{
			PriceCSV:   filepath.Join(dir, "prices.csv"),
			ESGCSV:     filepath.Join(dir, "missing_esg.csv"),
			OutputJSON: filepath.Join(dir, "out", "processed_data.json"),
		},
	}
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(risk.NewEngine(risk.DefaultConfig()), sector.NewAssigner(nil), logger.Nop())
}

func TestRefreshJob_Run(t *testing.T) {
	cfg := testConfig(t)
	sink := &recordingSink{}

	job := NewRefreshJob(staticTickers{"AAA", "BBB"}, tableCollector{}, sink, newPipeline(), cfg, logger.Nop())
	assert.Equal(t, "refresh", job.Name())
	assert.Equal(t, cfg.Schedule, job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 40, sink.rows)

	saved, err := pricetable.ReadFile(cfg.Pipeline.PriceCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, saved.Tickers)

	ds, err := pipeline.ReadDataset(cfg.Pipeline.OutputJSON)
	require.NoError(t, err)
	assert.Len(t, ds.Companies, 2)
	assert.Len(t, ds.QuartileMetrics, 4)
}

func TestRefreshJob_TickerFailure(t *testing.T) {
	job := NewRefreshJob(staticTickers{}, tableCollector{}, nil, newPipeline(), testConfig(t), logger.Nop())
	assert.Error(t, job.Run(context.Background()))
}
