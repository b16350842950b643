package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/bwprobe/kernel"
	"github.com/weiihann/bwprobe/report"
	"github.com/weiihann/bwprobe/sweep"
)

func newSweepCmd(logger *slog.Logger) *cobra.Command {
	var (
		opts measureOptions
		plan = sweep.DefaultPlan()
	)

	cmd := &cobra.Command{
		Use:   "sweep <mode:dot|add> <output_csv>",
		Short: "Measure bandwidth across a geometric range of array sizes",
		Long: `For every exponent e in [min-exp, max-exp] measure N = 2^e and
N = floor(1.5 * 2^e), each for --trials fresh allocations, with
repeat = max(1, work / N). Writes a header and one row per trial to
output_csv, replacing any existing file. Each row is flushed as soon as it
is measured.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), logger, sweepConfig{
				mode:    args[0],
				csvPath: args[1],
				plan:    plan,
				opts:    opts,
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&plan.MinExponent, "min-exp", sweep.DefaultMinExponent,
		"Smallest size exponent")
	flags.IntVar(&plan.MaxExponent, "max-exp", sweep.DefaultMaxExponent,
		"Largest size exponent")
	flags.IntVar(&plan.Trials, "trials", sweep.DefaultTrials,
		"Measurements per size")
	flags.IntVar(&plan.WorkBudget, "work", sweep.DefaultWorkBudget,
		"Elements touched per measurement; repeat = max(1, work / N)")
	addMeasureFlags(flags, &opts)

	return cmd
}

type sweepConfig struct {
	mode    string
	csvPath string
	plan    sweep.Plan
	opts    measureOptions
}

func runSweep(ctx context.Context, logger *slog.Logger, cfg sweepConfig) (err error) {
	k, err := kernel.Parse(cfg.mode)
	if err != nil {
		return err
	}

	if err := cfg.plan.Validate(); err != nil {
		return err
	}

	exporter, err := newExporter(cfg.opts)
	if err != nil {
		return err
	}

	out, err := report.CreateSweep(cfg.csvPath, k)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv %s: %w", cfg.csvPath, cerr)
		}
	}()

	unpin, err := pin(ctx, logger, cfg.opts.cpu)
	if err != nil {
		return err
	}
	defer unpin()

	driver := sweep.NewDriver(newRunner(logger, cfg.opts.seed), cfg.plan, logger)

	rows, runErr := driver.Run(ctx, k, observingSink{sink: out, exporter: exporter})

	// Metrics for completed rows are published even when the sweep stops
	// early.
	metricsErr := flushMetrics(ctx, logger, exporter, cfg.opts.metricsFile)

	if runErr != nil {
		logger.WarnContext(ctx, "sweep stopped",
			slog.Int("rows_written", rows),
			slog.String("error", runErr.Error()),
		)

		return errors.Join(fmt.Errorf("sweep: %w", runErr), metricsErr)
	}

	logger.InfoContext(ctx, "sweep written",
		slog.String("csv", cfg.csvPath),
		slog.Int("rows", rows),
	)

	return metricsErr
}
