// Package main provides the CLI entry point for bwprobe, a memory bandwidth
// microbenchmark for dot product and vector addition kernels.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	logger, handler := newLogger(os.Stderr)

	root := newRootCmd(logger, handler)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a slog.Logger backed by a charmbracelet/log handler,
// plus the handler itself so the level can be changed after flag parsing.
func newLogger(w io.Writer) (*slog.Logger, *log.Logger) {
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "bwprobe",
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})

	return slog.New(handler), handler
}

func newRootCmd(logger *slog.Logger, handler *log.Logger) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "bwprobe",
		Short: "Memory bandwidth microbenchmark",
		Long: `bwprobe measures the memory bandwidth achieved by two float64 kernels:
a dot product (two reads per element) and an in-place vector addition
(two reads and one write per element). Results are written as CSV rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				handler.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(newProbeCmd(logger))
	root.AddCommand(newSweepCmd(logger))
	root.AddCommand(newReportCmd(logger))
	root.AddCommand(newStrideCmd(logger))
	root.AddCommand(newChaseCmd(logger))

	return root
}

// measureOptions are shared by the measuring commands. Only probe and sweep
// export metrics.
type measureOptions struct {
	seed          int64
	cpu           int
	metricsFile   string
	metricsLabels map[string]string
}

func addMeasureFlags(flags *pflag.FlagSet, opts *measureOptions) {
	addRunFlags(flags, opts)

	flags.StringVar(&opts.metricsFile, "metrics-textfile", "",
		"Also write measurements as a Prometheus textfile to this path")
	flags.StringToStringVar(&opts.metricsLabels, "metrics-label", nil,
		"Constant label for exported metrics, e.g. job_id=123 (repeatable)")
}

func addRunFlags(flags *pflag.FlagSet, opts *measureOptions) {
	flags.Int64Var(&opts.seed, "seed", 0,
		"Random seed for the array fill (0 = use current time)")
	flags.IntVar(&opts.cpu, "cpu", -1,
		"Pin the measuring thread to this CPU (-1 = no pinning)")
}
