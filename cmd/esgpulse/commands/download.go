package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/internal/collector"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download close prices into a price table CSV",
	Long: `Fetches the ticker universe (S&P 500 from Wikipedia unless --tickers
is given), downloads each daily close history from Yahoo Finance with a
bounded worker pool and writes one date-aligned price table.

Tickers without data are reported and left out of the table.

Example:
  go run ./cmd/esgpulse download
  go run ./cmd/esgpulse download --tickers AAPL,MSFT,BRK.B --range 1y --out data/prices.csv`,
	RunE: runDownload,
}

var (
	downloadOut     string
	downloadRange   string
	downloadTickers string
	downloadLimit   int
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadOut, "out", "", "output CSV (default DOWNLOAD_DIR/sp500_close_prices_<timestamp>.csv)")
	downloadCmd.Flags().StringVar(&downloadRange, "range", "", "Yahoo range, e.g. 1y, 5y (default DOWNLOAD_RANGE)")
	downloadCmd.Flags().StringVar(&downloadTickers, "tickers", "", "comma separated tickers instead of the S&P 500 list")
	downloadCmd.Flags().IntVar(&downloadLimit, "limit", 0, "only download the first N tickers")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if downloadRange != "" {
		cfg.Download.Range = downloadRange
	}
	out := downloadOut
	if out == "" {
		name := fmt.Sprintf("sp500_close_prices_%s.csv", time.Now().Format("20060102_150405"))
		out = filepath.Join(cfg.Download.OutputDir, name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := newDownloadDeps(ctx, cfg, log)
	defer deps.Close()

	tickers := splitTickers(downloadTickers)
	if len(tickers) == 0 {
		tickers, err = deps.tickers.FetchSP500Tickers(ctx)
		if err != nil {
			return fmt.Errorf("fetch tickers: %w", err)
		}
	}
	if downloadLimit > 0 && downloadLimit < len(tickers) {
		tickers = tickers[:downloadLimit]
	}

	start := time.Now()
	table, results, err := deps.collector.Collect(ctx, tickers, collector.Config{
		Workers: cfg.Download.Workers,
		Range:   cfg.Download.Range,
	})
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	if err := table.WriteFile(out); err != nil {
		return fmt.Errorf("save price table: %w", err)
	}

	var missing []string
	cached := 0
	for _, r := range results {
		if r.Error != nil {
			missing = append(missing, r.Ticker)
		} else if r.Cached {
			cached++
		}
	}

	PrintHeader("Price Download")
	PrintKeyValue("Range", cfg.Download.Range, 10)
	PrintKeyValue("Tickers", fmt.Sprintf("%d", len(tickers)), 10)
	PrintKeyValue("Columns", fmt.Sprintf("%d", len(table.Tickers)), 10)
	PrintKeyValue("Days", fmt.Sprintf("%d", table.NumRows()), 10)
	PrintKeyValue("Cached", fmt.Sprintf("%d", cached), 10)
	PrintKeyValue("Duration", time.Since(start).Round(time.Millisecond).String(), 10)
	PrintSeparator()
	if len(missing) > 0 {
		PrintWarning(fmt.Sprintf("No data for %d tickers: %s", len(missing), strings.Join(missing, ", ")))
	}
	PrintSuccess(fmt.Sprintf("Saved %s", out))

	return nil
}

// splitTickers parses a comma separated ticker flag
func splitTickers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.ToUpper(strings.TrimSpace(part)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
