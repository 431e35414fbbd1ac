package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/pipeline"
	"github.com/wonny/esgpulse/internal/store"
	"github.com/wonny/esgpulse/pkg/database"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build the ESG risk/return dataset",
	Long: `Runs the pipeline: price table → per-ticker metrics → ESG merge →
quartile bucketing → per-quartile aggregation → JSON output.

A missing or unreadable ESG file is not fatal: every company then gets a
deterministic synthetic ESG score.

Example:
  go run ./cmd/esgpulse process
  go run ./cmd/esgpulse process --prices data/prices.csv --out dashboard/data/processed_data.json
  go run ./cmd/esgpulse process --source db`,
	RunE: runProcess,
}

var (
	processPrices  string
	processESG     string
	processOut     string
	processSource  string
	processProfile string
)

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processPrices, "prices", "", "price table CSV (default PRICE_CSV)")
	processCmd.Flags().StringVar(&processESG, "esg", "", "ESG reference CSV (default ESG_CSV)")
	processCmd.Flags().StringVar(&processOut, "out", "", "output JSON (default OUTPUT_JSON)")
	processCmd.Flags().StringVar(&processSource, "source", "csv", "price source (csv|db)")
	processCmd.Flags().StringVar(&processProfile, "profile", "", "YAML pipeline profile (default PROFILE_FILE)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if processPrices != "" {
		cfg.Pipeline.PriceCSV = processPrices
	}
	if processESG != "" {
		cfg.Pipeline.ESGCSV = processESG
	}
	if processOut != "" {
		cfg.Pipeline.OutputJSON = processOut
	}
	if processProfile != "" {
		cfg.Pipeline.ProfileFile = processProfile
	}

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var prices pipeline.PriceSource
	switch processSource {
	case "csv":
		prices = pipeline.CSVPrices{Path: cfg.Pipeline.PriceCSV}
	case "db":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		prices = store.NewPriceRepository(db.Pool, log)
	default:
		return fmt.Errorf("unknown --source %q (expected csv or db)", processSource)
	}

	report, err := p.Execute(ctx, prices, pipeline.CSVReference{Path: cfg.Pipeline.ESGCSV}, cfg.Pipeline.OutputJSON)
	if err != nil {
		log.WithError(err).Error("Pipeline failed")
		return err
	}

	printReport(report)
	return nil
}

// printReport prints the run summary
func printReport(report *pipeline.Report) {
	PrintHeader("ESG Pipeline Report")
	PrintKeyValue("Run ID", report.RunID, 12)
	PrintKeyValue("Tickers", strconv.Itoa(report.Tickers), 12)
	PrintKeyValue("Companies", strconv.Itoa(report.Companies), 12)
	PrintKeyValue("Skipped", strconv.Itoa(len(report.Skipped)), 12)
	PrintKeyValue("Synthetic", strconv.Itoa(report.Synthetic), 12)
	PrintKeyValue("Duration", report.Duration.String(), 12)
	PrintSeparator()

	rows := make([][]string, 0, len(contracts.Quartiles))
	for _, q := range contracts.Quartiles {
		rows = append(rows, []string{string(q), strconv.Itoa(report.QuartileN[q])})
	}
	PrintTable([]string{"Quartile", "Companies"}, rows)
	PrintSeparator()

	if report.ESGDegraded {
		PrintWarning("ESG reference unavailable, all scores are synthetic")
	}
	PrintSuccess(fmt.Sprintf("Dataset written to %s", report.OutputPath))
}
