package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/internal/store"
	"github.com/wonny/esgpulse/pkg/database"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a price table CSV to Postgres",
	Long: `Upserts every day of a price table into stock_prices, one row per date
with all closes in a JSONB map. Rows are sent in batches; a failed batch is
counted and the upload continues.

Example:
  go run ./cmd/esgpulse upload --sql-only
  go run ./cmd/esgpulse upload --file data/prices.csv --batch-size 100`,
	RunE: runUpload,
}

var (
	uploadFile      string
	uploadSQLOnly   bool
	uploadBatchSize int
)

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "price table CSV (default PRICE_CSV)")
	uploadCmd.Flags().BoolVar(&uploadSQLOnly, "sql-only", false, "print the table DDL and exit")
	uploadCmd.Flags().IntVar(&uploadBatchSize, "batch-size", 0, "rows per batch (default UPLOAD_BATCH_SIZE)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadSQLOnly {
		fmt.Fprintln(cmd.OutOrStdout(), store.SchemaSQL)
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), store.PolicySQL)
		return nil
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if uploadFile != "" {
		cfg.Pipeline.PriceCSV = uploadFile
	}
	if uploadBatchSize > 0 {
		cfg.UploadBatchSize = uploadBatchSize
	}

	table, err := pricetable.ReadFile(cfg.Pipeline.PriceCSV)
	if err != nil {
		return fmt.Errorf("read price table: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewPriceRepository(db.Pool, log)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rows := table.Rows()
	result, err := repo.UpsertRows(ctx, rows, cfg.UploadBatchSize)
	if err != nil {
		return fmt.Errorf("upload prices: %w", err)
	}

	PrintHeader("Price Upload")
	PrintKeyValue("File", cfg.Pipeline.PriceCSV, 9)
	PrintKeyValue("Rows", fmt.Sprintf("%d", len(rows)), 9)
	PrintKeyValue("Batches", fmt.Sprintf("%d", result.Batches), 9)
	PrintKeyValue("Uploaded", fmt.Sprintf("%d", result.Uploaded), 9)
	PrintKeyValue("Errors", fmt.Sprintf("%d", result.Errors), 9)
	PrintSeparator()

	if result.Errors > 0 {
		PrintWarning(fmt.Sprintf("%d rows failed to upload", result.Errors))
		return fmt.Errorf("%d of %d rows failed to upload", result.Errors, len(rows))
	}
	PrintSuccess("Upload complete")
	return nil
}
