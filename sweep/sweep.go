// Package sweep drives the bandwidth probe over a geometric range of array
// sizes. For every exponent e in [MinExponent, MaxExponent] it measures
// N = 2^e and N = floor(1.5 * 2^e), each for a fixed number of trials.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/kernel"
)

const (
	// DefaultMinExponent is the smallest size exponent (N = 32).
	DefaultMinExponent = 5
	// DefaultMaxExponent is the largest size exponent (N = 2^30).
	DefaultMaxExponent = 30
	// DefaultTrials is the number of fresh measurements per size.
	DefaultTrials = 10
	// DefaultWorkBudget is the element count, summed over repeats, that
	// each measurement aims to touch.
	DefaultWorkBudget = 10_000_000
)

// ErrInvalidPlan is returned by Plan.Validate.
var ErrInvalidPlan = errors.New("invalid sweep plan")

// Plan describes which sizes are measured and how often.
type Plan struct {
	MinExponent int
	MaxExponent int
	Trials      int
	WorkBudget  int
}

// Point is one array size in the plan.
type Point struct {
	Exponent int
	N        int
	Repeat   int
}

// DefaultPlan returns exponents 5..30, 10 trials, 10M element budget.
func DefaultPlan() Plan {
	return Plan{
		MinExponent: DefaultMinExponent,
		MaxExponent: DefaultMaxExponent,
		Trials:      DefaultTrials,
		WorkBudget:  DefaultWorkBudget,
	}
}

// Validate rejects plans that would produce no rows or overflow int.
func (p Plan) Validate() error {
	switch {
	case p.MinExponent < 0:
		return fmt.Errorf("%w: min exponent %d is negative", ErrInvalidPlan, p.MinExponent)
	case p.MaxExponent < p.MinExponent:
		return fmt.Errorf("%w: max exponent %d below min exponent %d",
			ErrInvalidPlan, p.MaxExponent, p.MinExponent)
	case p.MaxExponent > 60:
		return fmt.Errorf("%w: max exponent %d is too large", ErrInvalidPlan, p.MaxExponent)
	case p.Trials < 1:
		return fmt.Errorf("%w: trials must be at least 1, got %d", ErrInvalidPlan, p.Trials)
	case p.WorkBudget < 1:
		return fmt.Errorf("%w: work budget must be positive, got %d", ErrInvalidPlan, p.WorkBudget)
	}

	return nil
}

// Points returns the sizes in measurement order: for each exponent, 2^e
// followed by floor(1.5 * 2^e).
func (p Plan) Points() []Point {
	if p.MaxExponent < p.MinExponent {
		return nil
	}

	points := make([]Point, 0, 2*(p.MaxExponent-p.MinExponent+1))

	for e := p.MinExponent; e <= p.MaxExponent; e++ {
		n1 := 1 << e
		n2 := n1 + n1/2

		points = append(points,
			Point{Exponent: e, N: n1, Repeat: RepeatFor(n1, p.WorkBudget)},
			Point{Exponent: e, N: n2, Repeat: RepeatFor(n2, p.WorkBudget)},
		)
	}

	return points
}

// Rows returns the number of measurements the plan produces.
func (p Plan) Rows() int {
	return len(p.Points()) * p.Trials
}

// RepeatFor returns max(1, floor(budget / n)), which keeps total work per
// measurement roughly constant across sizes.
func RepeatFor(n, budget int) int {
	if n <= 0 {
		return 1
	}

	return max(1, budget/n)
}

// Prober runs one measurement. *harness.Runner satisfies it.
type Prober interface {
	Run(ctx context.Context, cfg harness.RunConfig) (*harness.Measurement, error)
}

// Sink receives each measurement as soon as it is taken.
type Sink interface {
	Write(trial int, m harness.Measurement) error
}

// Driver executes a Plan.
type Driver struct {
	Prober Prober
	Plan   Plan
	Logger *slog.Logger
}

// NewDriver creates a Driver for plan.
func NewDriver(prober Prober, plan Plan, logger *slog.Logger) *Driver {
	return &Driver{
		Prober: prober,
		Plan:   plan,
		Logger: logger.With(slog.String("component", "sweep")),
	}
}

// Run measures every point of the plan Trials times with kernel k and hands
// each measurement to sink. Trials are numbered from 1 within each size.
// Cancellation is checked between trials; the first error stops the sweep.
func (d *Driver) Run(ctx context.Context, k kernel.Kernel, sink Sink) (int, error) {
	if err := d.Plan.Validate(); err != nil {
		return 0, err
	}

	points := d.Plan.Points()
	written := 0

	d.Logger.InfoContext(ctx, "starting sweep",
		slog.String("kernel", k.String()),
		slog.Int("sizes", len(points)),
		slog.Int("trials", d.Plan.Trials),
	)

	for _, pt := range points {
		d.Logger.InfoContext(ctx, "measuring size",
			slog.Int("n", pt.N),
			slog.Int("repeat", pt.Repeat),
		)

		for trial := 1; trial <= d.Plan.Trials; trial++ {
			if err := ctx.Err(); err != nil {
				return written, err
			}

			m, err := d.Prober.Run(ctx, harness.RunConfig{
				N:      pt.N,
				Repeat: pt.Repeat,
				Kernel: k,
			})
			if err != nil {
				return written, fmt.Errorf("n=%d trial %d: %w", pt.N, trial, err)
			}

			if err := sink.Write(trial, *m); err != nil {
				return written, fmt.Errorf("write n=%d trial %d: %w", pt.N, trial, err)
			}

			written++
		}
	}

	d.Logger.InfoContext(ctx, "sweep complete", slog.Int("rows", written))

	return written, nil
}
