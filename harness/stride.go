package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/weiihann/bwprobe/kernel"
)

// daxpyAlpha is the scale factor of the strided y += alpha*x pass.
const daxpyAlpha = 2.0

// StrideConfig holds parameters for one strided measurement: N elements
// are touched in each of two arrays, Stride elements apart.
type StrideConfig struct {
	N      int
	Stride int
}

// Validate checks N > 0, Stride >= 1 and that N*Stride fits in an int.
func (c StrideConfig) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("%w: N must be positive, got %d", ErrInvalidConfig, c.N)
	}
	if c.Stride < 1 {
		return fmt.Errorf("%w: stride must be at least 1, got %d", ErrInvalidConfig, c.Stride)
	}
	if c.N > math.MaxInt/c.Stride {
		return fmt.Errorf("%w: N=%d with stride %d overflows", ErrInvalidConfig, c.N, c.Stride)
	}

	return nil
}

// StrideMeasurement is the outcome of one strided pass. Bytes counts the
// 8-byte elements of x and y that were touched, not whole cache lines.
type StrideMeasurement struct {
	N             int
	Stride        int
	Elapsed       time.Duration
	Bytes         uint64
	BandwidthGBps float64
}

// ElapsedSeconds returns the timed region's duration in seconds.
func (m StrideMeasurement) ElapsedSeconds() float64 {
	return m.Elapsed.Seconds()
}

// RunStride allocates x and y of N*Stride elements, fills them, performs
// one untimed strided pass and then times a second one.
func (r *Runner) RunStride(ctx context.Context, cfg StrideConfig) (*StrideMeasurement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, y, err := r.allocPair(ctx, cfg.N*cfg.Stride)
	if err != nil {
		return nil, err
	}
	defer r.release(ctx, "A", x)
	defer r.release(ctx, "B", y)

	xv, yv := x.Float64s(), y.Float64s()

	r.Workload.FillPair(xv, yv)
	kernel.StridedDaxpy(daxpyAlpha, xv, yv, cfg.N, cfg.Stride)

	start := time.Now()
	kernel.StridedDaxpy(daxpyAlpha, xv, yv, cfg.N, cfg.Stride)
	elapsed := time.Since(start)

	bytes := 2 * uint64(cfg.N) * 8

	m := &StrideMeasurement{
		N:             cfg.N,
		Stride:        cfg.Stride,
		Elapsed:       elapsed,
		Bytes:         bytes,
		BandwidthGBps: Bandwidth(bytes, elapsed),
	}

	r.Logger.DebugContext(ctx, "strided pass finished",
		slog.Int("n", cfg.N),
		slog.Int("stride", cfg.Stride),
		slog.Duration("elapsed", elapsed),
	)

	return m, nil
}
