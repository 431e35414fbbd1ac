package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/esgpulse/internal/collector"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/internal/store"
	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/logger"
)

// TickerSource lists the universe to download
type TickerSource interface {
	FetchSP500Tickers(ctx context.Context) ([]string, error)
}

// PriceCollector downloads histories into a price table
type PriceCollector interface {
	Collect(ctx context.Context, tickers []string, cfg collector.Config) (*pricetable.Table, []collector.FetchResult, error)
}

// PriceSink persists price table rows
type PriceSink interface {
	UpsertRows(ctx context.Context, rows []pricetable.Row, batchSize int) (store.UploadResult, error)
}

// RefreshJob re-downloads prices and regenerates the dataset
// ⭐ SSOT: the scheduled end-to-end refresh lives in this job
type RefreshJob struct {
	tickers   TickerSource
	collector PriceCollector
	sink      PriceSink // optional
	pipeline  *pipeline.Pipeline
	config    *config.Config
	logger    *logger.Logger
}

// NewRefreshJob creates a new refresh job. sink may be nil.
func NewRefreshJob(
	tickers TickerSource,
	col PriceCollector,
	sink PriceSink,
	p *pipeline.Pipeline,
	cfg *config.Config,
	log *logger.Logger,
) *RefreshJob {
	return &RefreshJob{
		tickers:   tickers,
		collector: col,
		sink:      sink,
		pipeline:  p,
		config:    cfg,
		logger:    log.WithField("job", "refresh"),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Schedule returns the configured cron schedule
func (j *RefreshJob) Schedule() string {
	return j.config.Schedule
}

// Run downloads, optionally uploads, then processes
func (j *RefreshJob) Run(ctx context.Context) error {
	tickers, err := j.tickers.FetchSP500Tickers(ctx)
	if err != nil {
		return fmt.Errorf("fetch tickers: %w", err)
	}

	table, _, err := j.collector.Collect(ctx, tickers, collector.Config{
		Workers: j.config.Download.Workers,
		Range:   j.config.Download.Range,
	})
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	if err := table.WriteFile(j.config.Pipeline.PriceCSV); err != nil {
		return fmt.Errorf("save price table: %w", err)
	}

	if j.sink != nil {
		result, err := j.sink.UpsertRows(ctx, table.Rows(), j.config.UploadBatchSize)
		if err != nil {
			return fmt.Errorf("upload prices: %w", err)
		}
		if result.Errors > 0 {
			j.logger.WithFields(map[string]interface{}{
				"uploaded": result.Uploaded,
				"errors":   result.Errors,
			}).Warn("Some price batches failed to upload")
		}
	}

	report, err := j.pipeline.Execute(ctx,
		pipeline.TablePrices{Table: table},
		pipeline.CSVReference{Path: j.config.Pipeline.ESGCSV},
		j.config.Pipeline.OutputJSON,
	)
	if err != nil {
		return fmt.Errorf("process dataset: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"companies": report.Companies,
		"skipped":   len(report.Skipped),
		"output":    report.OutputPath,
	}).Info("Refresh completed")

	return nil
}
