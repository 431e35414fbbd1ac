package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/esgpulse/internal/scheduler"
	"github.com/wonny/esgpulse/internal/scheduler/jobs"
	"github.com/wonny/esgpulse/internal/store"
	"github.com/wonny/esgpulse/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled dataset refresh",
	Long: `Runs the refresh job on a cron schedule (SCHEDULE, seconds first).

The refresh job downloads the S&P 500 price histories, optionally upserts
them into Postgres and regenerates the dataset.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job once, now

Example:
  go run ./cmd/esgpulse scheduler start
  go run ./cmd/esgpulse scheduler run refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerUpload bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().BoolVar(&schedulerUpload, "upload", false, "also upsert downloaded prices into Postgres")
}

// schedulerEnv holds the scheduler and the resources to release with it
type schedulerEnv struct {
	sched   *scheduler.Scheduler
	cleanup []func()
}

func (e *schedulerEnv) Close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
}

// initScheduler wires the refresh job into a new scheduler
func initScheduler(ctx context.Context) (*schedulerEnv, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}

	env := &schedulerEnv{}

	deps := newDownloadDeps(ctx, cfg, log)
	env.cleanup = append(env.cleanup, deps.Close)

	var sink jobs.PriceSink
	if schedulerUpload {
		db, err := database.New(ctx, cfg)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		env.cleanup = append(env.cleanup, db.Close)

		repo := store.NewPriceRepository(db.Pool, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			env.Close()
			return nil, err
		}
		sink = repo
	}

	p, err := newPipeline(cfg, log)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.sched = scheduler.New(log)
	refresh := jobs.NewRefreshJob(deps.tickers, deps.collector, sink, p, cfg, log)
	if err := env.sched.AddJob(refresh); err != nil {
		env.Close()
		return nil, err
	}

	return env, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	env, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer env.Close()

	env.sched.Start()

	PrintSuccess("Scheduler started")
	for _, jobName := range env.sched.GetAllJobs() {
		next, _ := env.sched.NextRun(jobName)
		PrintKeyValue(jobName, "next run "+next.Format("2006-01-02 15:04:05"), 10)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	env.sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	env, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer env.Close()

	stats := env.sched.GetJobStats()
	rows := make([][]string, 0, len(stats))
	for _, jobName := range env.sched.GetAllJobs() {
		rows = append(rows, []string{jobName, stats[jobName].Schedule})
	}
	PrintTable([]string{"Job", "Schedule"}, rows)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer env.Close()

	result, err := env.sched.RunNow(ctx, args[0])
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Job %s completed in %s (%d attempt(s))", result.JobName, result.Duration, result.Attempts))
	return nil
}
