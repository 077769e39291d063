package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/pipelines"
)

var (
	runOnConflict string
	runSeed       uint64
	runBatchSize  int
	runSalesRows  int
	runOutputDir  string
	runMaxItems   int
)

var runCmd = &cobra.Command{
	Use:   "run <pipeline>",
	Short: "Run a pipeline once",
	Long: `Run every stage of a pipeline once, in order. Reports are written to
stdout in the selected format; progress is logged to stderr.

Conflict policies (sales):
  abort    - stop when a table already exists
  recreate - drop and recreate existing tables
  skip     - keep existing tables and load into them

Example:
  pgedge-etl run sales --driver mysql --user root --password secret
  pgedge-etl run sales --driver sqlite --path sales.db --on-conflict recreate --seed 42
  pgedge-etl run banks --output-dir ./out
  pgedge-etl run berries --max-items 20 --format markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOnConflict, "on-conflict", "",
		"existing table policy: abort, recreate, skip (sales)")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0,
		"random seed for generated data, 0 = seed from the clock (sales)")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0,
		"rows per INSERT statement (sales)")
	runCmd.Flags().IntVar(&runSalesRows, "sales-rows", 0,
		"number of synthetic sales rows (sales)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "",
		"directory for output files (banks, berries)")
	runCmd.Flags().IntVar(&runMaxItems, "max-items", 0,
		"stop after this many berries (berries)")
}

func runRun(cmd *cobra.Command, args []string) error {
	pipeline, err := pipelines.Get(args[0])
	if err != nil {
		return err
	}

	// Override config with CLI flags
	if runOnConflict != "" {
		cfg.Sales.OnConflict = runOnConflict
	}
	if runSeed > 0 {
		cfg.Sales.Seed = runSeed
	}
	if runBatchSize > 0 {
		cfg.Sales.BatchSize = runBatchSize
	}
	if runSalesRows > 0 {
		cfg.Sales.SalesRows = runSalesRows
	}
	if runOutputDir != "" {
		cfg.Banks.OutputDir = runOutputDir
		cfg.Berries.OutputDir = runOutputDir
	}
	if runMaxItems > 0 {
		cfg.Berries.MaxItems = runMaxItems
	}

	// Validate configuration
	if err := pipeline.Validate(cfg); err != nil {
		return err
	}

	// Set up context with cancellation (and optional timeout)
	ctx := context.Background()
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().
		Str("pipeline", pipeline.Name()).
		Str("format", cfg.Format).
		Msg("Starting pipeline")

	start := time.Now()
	if err := pipeline.Run(ctx, cfg, cmd.OutOrStdout()); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s pipeline timed out after %ds: %w", pipeline.Name(), cfg.Timeout, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s pipeline interrupted: %w", pipeline.Name(), err)
		}
		return fmt.Errorf("%s pipeline failed: %w", pipeline.Name(), err)
	}

	logging.Info().
		Str("pipeline", pipeline.Name()).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline completed")
	return nil
}
