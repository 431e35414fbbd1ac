package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// tickersCmd represents the tickers command
var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Print the S&P 500 ticker list",
	Long: `Scrapes the S&P 500 constituents table from Wikipedia and prints one
ticker per line, in page order.

Example:
  go run ./cmd/esgpulse tickers`,
	RunE: runTickers,
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}

func runTickers(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deps := newDownloadDeps(ctx, cfg, log)
	defer deps.Close()

	tickers, err := deps.tickers.FetchSP500Tickers(ctx)
	if err != nil {
		return fmt.Errorf("fetch tickers: %w", err)
	}

	for _, t := range tickers {
		fmt.Fprintln(cmd.OutOrStdout(), t)
	}
	return nil
}
