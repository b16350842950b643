package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/weiihann/bwprobe/kernel"
	"github.com/weiihann/bwprobe/membuf"
	"github.com/weiihann/bwprobe/workload"
)

// ErrInvalidConfig is returned when a RunConfig violates a precondition.
var ErrInvalidConfig = errors.New("invalid probe config")

// RunConfig holds parameters for a single probe execution.
type RunConfig struct {
	N      int
	Repeat int
	Kernel kernel.Kernel
}

// Validate checks N > 0, Repeat >= 1 and a known kernel.
func (c RunConfig) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("%w: N must be positive, got %d", ErrInvalidConfig, c.N)
	}
	if c.Repeat < 1 {
		return fmt.Errorf("%w: repeat must be at least 1, got %d", ErrInvalidConfig, c.Repeat)
	}
	if !c.Kernel.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Kernel)
	}

	return nil
}

// Runner executes probes. Buffers are allocated per call and never reused.
type Runner struct {
	Workload *workload.Generator
	Logger   *slog.Logger

	alloc func(n int) (*membuf.Vector, error)
}

// NewRunner creates a Runner that fills its arrays from gen.
func NewRunner(gen *workload.Generator, logger *slog.Logger) *Runner {
	return &Runner{
		Workload: gen,
		Logger:   logger.With(slog.String("component", "probe")),
		alloc:    membuf.New,
	}
}

// Run allocates A and B, fills them, performs one untimed A += B warm-up
// pass, then times cfg.Repeat passes of the kernel. Both arrays are
// released before Run returns.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Measurement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, b, err := r.allocPair(ctx, cfg.N)
	if err != nil {
		return nil, err
	}
	defer r.release(ctx, "A", a)
	defer r.release(ctx, "B", b)

	av, bv := a.Float64s(), b.Float64s()

	r.Workload.FillPair(av, bv)
	kernel.Warmup(av, bv)

	r.Logger.DebugContext(ctx, "buffers ready",
		slog.String("kernel", cfg.Kernel.String()),
		slog.Int("n", cfg.N),
		slog.Int("repeat", cfg.Repeat),
	)

	start := time.Now()
	result := cfg.Kernel.Run(av, bv, cfg.Repeat)
	elapsed := time.Since(start)

	bytes := cfg.Kernel.BytesMoved(cfg.N, cfg.Repeat)

	m := &Measurement{
		Kernel:        cfg.Kernel,
		N:             cfg.N,
		Repeat:        cfg.Repeat,
		Elapsed:       elapsed,
		Bytes:         bytes,
		BandwidthGBps: Bandwidth(bytes, elapsed),
		DotResult:     result,
		Seed:          r.Workload.Seed(),
	}

	r.Logger.DebugContext(ctx, "probe finished",
		slog.Duration("elapsed", elapsed),
		slog.Float64("bandwidth_gbps", m.BandwidthGBps),
	)

	return m, nil
}

// allocPair allocates A and B of n elements each. If B cannot be obtained,
// A is released before returning.
func (r *Runner) allocPair(ctx context.Context, n int) (*membuf.Vector, *membuf.Vector, error) {
	a, err := r.alloc(n)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate A: %w", err)
	}

	b, err := r.alloc(n)
	if err != nil {
		r.release(ctx, "A", a)

		return nil, nil, fmt.Errorf("allocate B: %w", err)
	}

	return a, b, nil
}

func (r *Runner) release(ctx context.Context, name string, v *membuf.Vector) {
	if err := v.Close(); err != nil {
		r.Logger.WarnContext(ctx, "failed to release buffer",
			slog.String("buffer", name),
			slog.String("error", err.Error()),
		)
	}
}
