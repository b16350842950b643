package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/weiihann/bwprobe/kernel"
)

// ChaseConfig holds parameters for one pointer-chase measurement over N
// indices.
type ChaseConfig struct {
	N int
}

// Validate checks N > 0.
func (c ChaseConfig) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("%w: N must be positive, got %d", ErrInvalidConfig, c.N)
	}

	return nil
}

// ChaseMeasurement is the outcome of one pointer chase. Steps equals N.
type ChaseMeasurement struct {
	N       int
	Steps   int
	Elapsed time.Duration
	Final   int64
	Seed    int64
}

// ElapsedSeconds returns the timed region's duration in seconds.
func (m ChaseMeasurement) ElapsedSeconds() float64 {
	return m.Elapsed.Seconds()
}

// NanosPerLoad returns the mean latency of one dependent load.
func (m ChaseMeasurement) NanosPerLoad() float64 {
	if m.Steps <= 0 {
		return 0
	}

	return float64(m.Elapsed.Nanoseconds()) / float64(m.Steps)
}

// RunChase fills an index array with a random single-cycle permutation and
// times N dependent loads through it.
func (r *Runner) RunChase(ctx context.Context, cfg ChaseConfig) (*ChaseMeasurement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := r.alloc(cfg.N)
	if err != nil {
		return nil, fmt.Errorf("allocate index: %w", err)
	}
	defer r.release(ctx, "index", buf)

	next := buf.Int64s()
	r.Workload.Cycle(next)

	steps := buf.Len()

	start := time.Now()
	final := kernel.Chase(next, steps)
	elapsed := time.Since(start)

	m := &ChaseMeasurement{
		N:       cfg.N,
		Steps:   steps,
		Elapsed: elapsed,
		Final:   final,
		Seed:    r.Workload.Seed(),
	}

	r.Logger.DebugContext(ctx, "pointer chase finished",
		slog.Int("n", cfg.N),
		slog.Duration("elapsed", elapsed),
		slog.Float64("ns_per_load", m.NanosPerLoad()),
	)

	return m, nil
}
