package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/sweep"
	"github.com/weiihann/bwprobe/telemetry"
	"github.com/weiihann/bwprobe/workload"
)

func newRunner(logger *slog.Logger, seed int64) *harness.Runner {
	return harness.NewRunner(workload.NewGenerator(workload.Config{Seed: seed}), logger)
}

// pin pins the current thread when cpu >= 0. The returned function is
// always safe to call.
func pin(ctx context.Context, logger *slog.Logger, cpu int) (func(), error) {
	if cpu < 0 {
		return func() {}, nil
	}

	unpin, err := harness.PinThread(cpu)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "pinned measuring thread", slog.Int("cpu", cpu))

	return unpin, nil
}

func newExporter(opts measureOptions) (*telemetry.Exporter, error) {
	if opts.metricsFile == "" {
		return nil, nil
	}

	return telemetry.NewExporter(opts.metricsLabels)
}

func flushMetrics(ctx context.Context, logger *slog.Logger, e *telemetry.Exporter, path string) error {
	if e == nil {
		return nil
	}

	if err := e.WriteTextfile(path); err != nil {
		return err
	}

	logger.DebugContext(ctx, "metrics written", slog.String("path", path))

	return nil
}

// observingSink forwards rows to the CSV sink and, after a successful
// write, to the metrics exporter.
type observingSink struct {
	sink     sweep.Sink
	exporter *telemetry.Exporter
}

func (s observingSink) Write(trial int, m harness.Measurement) error {
	if err := s.sink.Write(trial, m); err != nil {
		return err
	}

	if s.exporter != nil {
		s.exporter.Observe(m)
	}

	return nil
}

func parseCount(name, value string, least int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, value)
	}

	if v < least {
		return 0, fmt.Errorf("invalid %s %d: must be at least %d", name, v, least)
	}

	return v, nil
}
