package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/report"
	"github.com/weiihann/bwprobe/sweep"
)

func newStrideCmd(logger *slog.Logger) *cobra.Command {
	var (
		opts measureOptions
		plan = sweep.DefaultStridePlan()
	)

	cmd := &cobra.Command{
		Use:   "stride <output_csv>",
		Short: "Measure strided y += a*x bandwidth across access strides",
		Long: `For every stride s, allocate two arrays of N*s float64 values and time
one pass of y[i*s] += 2*x[i*s] over N elements after an untimed warm-up
pass. Bandwidth counts the 2*8*N bytes of the touched elements. Writes a
header and one row per stride to output_csv, replacing any existing file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStride(cmd.Context(), logger, cmd.OutOrStdout(), args[0], plan, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&plan.N, "n", sweep.DefaultStrideN,
		"Elements touched per pass")
	flags.IntSliceVar(&plan.Strides, "strides", sweep.DefaultStrides(),
		"Strides to measure, in elements")
	addRunFlags(flags, &opts)

	return cmd
}

// printingStrideSink writes each row to the CSV and its summary to stdout.
type printingStrideSink struct {
	out    *report.StrideWriter
	stdout io.Writer
}

func (s printingStrideSink) WriteStride(m harness.StrideMeasurement) error {
	if err := s.out.WriteStride(m); err != nil {
		return err
	}

	report.WriteStride(s.stdout, m)

	return nil
}

func runStride(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	csvPath string,
	plan sweep.StridePlan,
	opts measureOptions,
) (err error) {
	if err := plan.Validate(); err != nil {
		return err
	}

	out, err := report.CreateStride(csvPath)
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

	rows, err := sweep.RunStrides(ctx, logger, newRunner(logger, opts.seed), plan,
		printingStrideSink{out: out, stdout: stdout})
	if err != nil {
		return fmt.Errorf("stride sweep: %w", err)
	}

	logger.InfoContext(ctx, "stride results written",
		slog.String("csv", csvPath),
		slog.Int("rows", rows),
	)

	return nil
}
