package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/kernel"
	"github.com/weiihann/bwprobe/report"
)

func newProbeCmd(logger *slog.Logger) *cobra.Command {
	var opts measureOptions

	cmd := &cobra.Command{
		Use:   "probe <N> <repeat> <mode:dot|add> <output_csv>",
		Short: "Measure bandwidth once and append a row to a CSV file",
		Long: `Allocate two arrays of N float64 values, run the selected kernel
repeat times and append mode,N,repeat,elapsed_seconds,bandwidth_GBps
(plus dot_result for dot) to output_csv. No header is written.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount("N", args[0], 1)
			if err != nil {
				return err
			}

			repeat, err := parseCount("repeat", args[1], 1)
			if err != nil {
				return err
			}

			return runProbe(cmd.Context(), logger, cmd.OutOrStdout(), probeConfig{
				n:       n,
				repeat:  repeat,
				mode:    args[2],
				csvPath: args[3],
				opts:    opts,
			})
		},
	}

	addMeasureFlags(cmd.Flags(), &opts)

	return cmd
}

type probeConfig struct {
	n       int
	repeat  int
	mode    string
	csvPath string
	opts    measureOptions
}

func runProbe(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	cfg probeConfig,
) (err error) {
	// Resolve the kernel before touching memory or the filesystem.
	k, err := kernel.Parse(cfg.mode)
	if err != nil {
		return err
	}

	exporter, err := newExporter(cfg.opts)
	if err != nil {
		return err
	}

	out, err := report.OpenAppend(cfg.csvPath)
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

	runner := newRunner(logger, cfg.opts.seed)

	m, err := runner.Run(ctx, harness.RunConfig{
		N:      cfg.n,
		Repeat: cfg.repeat,
		Kernel: k,
	})
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}

	if err := out.Append(*m); err != nil {
		return err
	}

	report.WriteMeasurement(stdout, *m)

	logger.InfoContext(ctx, "measurement appended",
		slog.String("csv", cfg.csvPath),
		slog.String("kernel", k.String()),
		slog.Float64("bandwidth_gbps", m.BandwidthGBps),
	)

	if exporter != nil {
		exporter.Observe(*m)
	}

	return flushMetrics(ctx, logger, exporter, cfg.opts.metricsFile)
}
