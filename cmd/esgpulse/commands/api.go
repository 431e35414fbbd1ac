package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/internal/api"
	"github.com/wonny/esgpulse/internal/api/handlers"
	"github.com/wonny/esgpulse/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the dataset over HTTP",
	Long: `Starts the read-only REST API over the processed dataset file.
The file is reloaded when a pipeline run replaces it.

Endpoints:
  GET /health                    - Health check
  GET /api/dataset               - Whole dataset
  GET /api/companies             - Companies (?sector=, ?quartile=)
  GET /api/companies/{ticker}    - One company
  GET /api/quartiles             - Per-quartile aggregates
  GET /api/quartiles/{quartile}  - One quartile with its companies

Example:
  go run ./cmd/esgpulse api
  go run ./cmd/esgpulse api --port 9000`,
	RunE: runAPIServer,
}

var (
	apiPort    string
	apiWithDB  bool
	apiDataset string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().BoolVar(&apiWithDB, "with-db", false, "include Postgres in /health")
	apiCmd.Flags().StringVar(&apiDataset, "dataset", "", "dataset JSON (default OUTPUT_JSON)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}
	if apiDataset != "" {
		cfg.Pipeline.OutputJSON = apiDataset
	}

	var db *database.DB
	if apiWithDB {
		db, err = database.New(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		log.Info("Connected to database")
	}

	datasetHandler := handlers.NewDatasetHandler(cfg.Pipeline.OutputJSON, log)
	healthHandler := handlers.NewHealthHandler("esgpulse", db)

	router := api.NewRouter(datasetHandler, healthHandler, log)
	server := api.New(cfg, log, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Printf("   Dataset: %s\n", cfg.Pipeline.OutputJSON)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
