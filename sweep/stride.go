package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/bwprobe/harness"
)

// DefaultStrideN is the number of elements touched per strided pass.
const DefaultStrideN = 1_000_000

// DefaultStrides returns the strides measured by default, in elements.
func DefaultStrides() []int {
	return []int{
		1, 2, 3, 4, 5, 6, 8, 10, 12, 16, 20, 24, 32, 40, 48, 64,
		75, 80, 96, 112, 128, 140, 156, 160, 192, 256,
	}
}

// StridePlan describes a stride sweep at a fixed element count.
type StridePlan struct {
	N       int
	Strides []int
}

// DefaultStridePlan returns DefaultStrideN with DefaultStrides.
func DefaultStridePlan() StridePlan {
	return StridePlan{N: DefaultStrideN, Strides: DefaultStrides()}
}

// Validate checks that there is something to measure and that every
// stride forms a valid harness.StrideConfig.
func (p StridePlan) Validate() error {
	if len(p.Strides) == 0 {
		return fmt.Errorf("%w: no strides given", ErrInvalidPlan)
	}

	for _, s := range p.Strides {
		if err := (harness.StrideConfig{N: p.N, Stride: s}).Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
		}
	}

	return nil
}

// StrideProber runs one strided measurement. *harness.Runner satisfies it.
type StrideProber interface {
	RunStride(ctx context.Context, cfg harness.StrideConfig) (*harness.StrideMeasurement, error)
}

// StrideSink receives each strided measurement as soon as it is taken.
type StrideSink interface {
	WriteStride(m harness.StrideMeasurement) error
}

// RunStrides measures plan.N elements at every stride of the plan, in
// order, and hands each measurement to sink. Cancellation is checked
// between strides; the first error stops the sweep.
func RunStrides(
	ctx context.Context,
	logger *slog.Logger,
	prober StrideProber,
	plan StridePlan,
	sink StrideSink,
) (int, error) {
	if err := plan.Validate(); err != nil {
		return 0, err
	}

	logger = logger.With(slog.String("component", "stride"))
	logger.InfoContext(ctx, "starting stride sweep",
		slog.Int("n", plan.N),
		slog.Int("strides", len(plan.Strides)),
	)

	written := 0

	for _, stride := range plan.Strides {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		m, err := prober.RunStride(ctx, harness.StrideConfig{N: plan.N, Stride: stride})
		if err != nil {
			return written, fmt.Errorf("stride %d: %w", stride, err)
		}

		if err := sink.WriteStride(*m); err != nil {
			return written, fmt.Errorf("write stride %d: %w", stride, err)
		}

		written++
	}

	logger.InfoContext(ctx, "stride sweep complete", slog.Int("rows", written))

	return written, nil
}
