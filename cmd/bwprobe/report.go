package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/bwprobe/hostinfo"
	"github.com/weiihann/bwprobe/report"
)

func newReportCmd(logger *slog.Logger) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <sweep_csv>",
		Short: "Summarize a sweep CSV per array size",
		Long: `Average every size of a sweep CSV over its trials and print mean,
min and max bandwidth together with the cache level the working set fits
in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), logger, cmd.OutOrStdout(), args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatMarkdown,
		"Output format: markdown, table, json, yaml")

	return cmd
}

func runReport(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	path string,
	format string,
) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sweep csv: %w", err)
	}
	defer f.Close()

	s, err := report.ReadSweep(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	host := hostinfo.Detect()

	logger.DebugContext(ctx, "sweep loaded",
		slog.String("path", path),
		slog.String("kernel", s.Kernel.String()),
		slog.Int("rows", len(s.Rows)),
		slog.String("cpu", host.CPU),
	)

	if err := report.Write(stdout, format, report.NewDocument(s, host)); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return nil
}
