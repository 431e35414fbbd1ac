package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/esg"
	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/internal/quartile"
	"github.com/wonny/esgpulse/internal/risk"
	"github.com/wonny/esgpulse/internal/sector"
	"github.com/wonny/esgpulse/pkg/logger"
)

// ErrFatalInput means the primary price input could not be loaded. No output is written.
var ErrFatalInput = errors.New("price input unavailable")

// Skip reasons
const (
	SkipInsufficientHistory = "insufficient_history"
	SkipComputation         = "computation_error"
)

// Pipeline turns a price table and an ESG reference into a Dataset
// ⭐ SSOT: the only place companies are assembled
type Pipeline struct {
	engine  *risk.Engine
	sectors *sector.Assigner
	logger  *logger.Logger
	runID   string
}

// New creates a pipeline
func New(engine *risk.Engine, sectors *sector.Assigner, log *logger.Logger) *Pipeline {
	return &Pipeline{
		engine:  engine,
		sectors: sectors,
		logger:  log.WithField("module", "pipeline"),
	}
}

// forRun returns a copy of the pipeline whose log lines carry runID
func (p *Pipeline) forRun(runID string) *Pipeline {
	run := *p
	run.runID = runID
	run.logger = p.logger.WithField("run_id", runID)
	return &run
}

// SkippedTicker records why a column produced no company
type SkippedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// Report summarises a run
type Report struct {
	RunID       string                     `json:"run_id"`
	Tickers     int                        `json:"tickers"`
	Companies   int                        `json:"companies"`
	Skipped     []SkippedTicker            `json:"skipped"`
	Synthetic   int                        `json:"synthetic_esg"`
	ESGDegraded bool                       `json:"esg_degraded"`
	QuartileN   map[contracts.Quartile]int `json:"quartile_counts"`
	OutputPath  string                     `json:"output_path,omitempty"`
	Duration    time.Duration              `json:"duration"`
}

// Run loads both inputs and builds the dataset. A price load failure
// returns ErrFatalInput; a reference load failure is logged and every
// ticker is synthesized.
func (p *Pipeline) Run(ctx context.Context, prices PriceSource, reference ReferenceSource) (*contracts.Dataset, *Report, error) {
	return p.forRun(uuid.New().String()).run(ctx, prices, reference)
}

func (p *Pipeline) run(ctx context.Context, prices PriceSource, reference ReferenceSource) (*contracts.Dataset, *Report, error) {
	start := time.Now()

	p.logger.Info("Loading price data")
	table, err := prices.LoadPrices(ctx)
	if err != nil {
		p.logger.WithError(err).Error("Failed to load price data")
		return nil, nil, fmt.Errorf("%w: %w", ErrFatalInput, err)
	}

	p.logger.Info("Loading ESG reference data")
	degraded := false
	var ref esg.Reference
	if reference != nil {
		ref, err = reference.LoadReference(ctx)
		if err != nil {
			p.logger.WithError(err).Warn("Could not load ESG reference, using full synthetic generation")
			ref = nil
			degraded = true
		}
	} else {
		degraded = true
	}

	dataset, report := p.build(table, esg.NewResolver(ref))
	report.ESGDegraded = degraded
	report.Duration = time.Since(start)

	return dataset, report, nil
}

// Build runs the per-ticker loop and the aggregation over an in-memory table
func (p *Pipeline) Build(table *pricetable.Table, resolver *esg.Resolver) (*contracts.Dataset, *Report) {
	return p.forRun(uuid.New().String()).build(table, resolver)
}

func (p *Pipeline) build(table *pricetable.Table, resolver *esg.Resolver) (*contracts.Dataset, *Report) {
	report := &Report{
		RunID:     p.runID,
		Tickers:   len(table.Tickers),
		Skipped:   make([]SkippedTicker, 0),
		QuartileN: make(map[contracts.Quartile]int, len(contracts.Quartiles)),
	}
	companies := make([]contracts.Company, 0, len(table.Tickers))

	p.logger.WithField("tickers", len(table.Tickers)).Info("Processing tickers")

	for i, ticker := range table.Tickers {
		company, source, err := p.processTicker(table, i, resolver)
		if err != nil {
			reason := SkipComputation
			if errors.Is(err, risk.ErrInsufficientHistory) {
				reason = SkipInsufficientHistory
			}
			report.Skipped = append(report.Skipped, SkippedTicker{
				Ticker: ticker,
				Reason: reason,
				Error:  err.Error(),
			})
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": reason,
			}).WithError(err).Debug("Skipping ticker")
			continue
		}

		if source == esg.SourceSynthetic {
			report.Synthetic++
		}
		report.QuartileN[company.Quartile]++
		companies = append(companies, company)
	}

	dataset := &contracts.Dataset{
		Companies:       companies,
		QuartileMetrics: quartile.Aggregate(companies),
	}
	report.Companies = len(companies)

	p.logger.WithFields(map[string]interface{}{
		"companies": report.Companies,
		"skipped":   len(report.Skipped),
		"synthetic": report.Synthetic,
	}).Info("Tickers processed")

	return dataset, report
}

// processTicker assembles the company of column i. A panic while extracting
// or computing is turned into an error so one bad column cannot abort the run.
func (p *Pipeline) processTicker(table *pricetable.Table, i int, resolver *esg.Resolver) (company contracts.Company, source esg.Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	series := table.Series(i)
	metrics, err := p.engine.Compute(series)
	if err != nil {
		return contracts.Company{}, "", err
	}

	score, source := resolver.Resolve(series.Ticker)

	return contracts.Company{
		Ticker:   series.Ticker,
		Name:     CompanyName(series.Ticker),
		Sector:   p.sectors.Assign(series.Ticker),
		ESG:      score,
		Quartile: quartile.Classify(score.Total),
		Metrics:  metrics,
	}, source, nil
}

// CompanyName is the display name used until a real name source exists
func CompanyName(ticker string) string {
	return ticker + " Inc."
}
