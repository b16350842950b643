package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/report"
)

func defaultChaseSizes() []int {
	return []int{1_000_000, 10_000_000, 50_000_000}
}

func newChaseCmd(logger *slog.Logger) *cobra.Command {
	var opts measureOptions

	sizes := defaultChaseSizes()

	cmd := &cobra.Command{
		Use:   "chase <output_csv>",
		Short: "Measure dependent-load latency with a pointer chase",
		Long: `For every size N, fill an index array with a random single-cycle
permutation and time N dependent loads through it. Appends N,elapsed_seconds
to output_csv for each size. No header is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChase(cmd.Context(), logger, cmd.OutOrStdout(), args[0], sizes, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntSliceVar(&sizes, "sizes", sizes, "Index array sizes to measure")
	addRunFlags(flags, &opts)

	return cmd
}

func runChase(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	csvPath string,
	sizes []int,
	opts measureOptions,
) (err error) {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: no sizes given", harness.ErrInvalidConfig)
	}

	for _, n := range sizes {
		if err := (harness.ChaseConfig{N: n}).Validate(); err != nil {
			return err
		}
	}

	out, err := report.OpenAppend(csvPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv %s: %w", csvPath, cerr)
		}
	}()

	unpin, err := pin(ctx, logger, opts.cpu)
	if err != nil {
		return err
	}
	defer unpin()

	runner := newRunner(logger, opts.seed)

	for _, n := range sizes {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, err := runner.RunChase(ctx, harness.ChaseConfig{N: n})
		if err != nil {
			return fmt.Errorf("chase n=%d: %w", n, err)
		}

		if err := out.AppendChase(*m); err != nil {
			return err
		}

		report.WriteChase(stdout, *m)

		logger.InfoContext(ctx, "chase appended",
			slog.Int("n", n),
			slog.Float64("ns_per_load", m.NanosPerLoad()),
		)
	}

	return nil
}
