package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/workload"
)

type fakeStrideProber struct {
	calls  []harness.StrideConfig
	failAt int
}

func (f *fakeStrideProber) RunStride(_ context.Context, cfg harness.StrideConfig) (*harness.StrideMeasurement, error) {
	f.calls = append(f.calls, cfg)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("boom")
	}

	return &harness.StrideMeasurement{N: cfg.N, Stride: cfg.Stride, Elapsed: time.Millisecond}, nil
}

type strideRecorder struct {
	strides []int
}

func (s *strideRecorder) WriteStride(m harness.StrideMeasurement) error {
	s.strides = append(s.strides, m.Stride)

	return nil
}

func TestDefaultStridePlan(t *testing.T) {
	plan := DefaultStridePlan()

	if plan.N != DefaultStrideN {
		t.Errorf("N = %d, want %d", plan.N, DefaultStrideN)
	}
	if len(plan.Strides) != 26 || plan.Strides[0] != 1 || plan.Strides[25] != 256 {
		t.Errorf("strides = %v", plan.Strides)
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("default plan invalid: %v", err)
	}
}

func TestStridePlanValidate(t *testing.T) {
	tests := []struct {
		name string
		plan StridePlan
	}{
		{"no strides", StridePlan{N: 10}},
		{"zero stride", StridePlan{N: 10, Strides: []int{1, 0}}},
		{"zero n", StridePlan{N: 0, Strides: []int{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("error = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestRunStridesOrder(t *testing.T) {
	prober := &fakeStrideProber{}
	sink := &strideRecorder{}

	plan := StridePlan{N: 100, Strides: []int{4, 1, 16}}

	rows, err := RunStrides(context.Background(), testLogger(), prober, plan, sink)
	if err != nil {
		t.Fatalf("RunStrides failed: %v", err)
	}

	if rows != 3 {
		t.Errorf("rows = %d, want 3", rows)
	}
	if diff := cmp.Diff([]int{4, 1, 16}, sink.strides); diff != "" {
		t.Errorf("stride order mismatch (-want +got):\n%s", diff)
	}
	for _, cfg := range prober.calls {
		if cfg.N != 100 {
			t.Errorf("call N = %d, want 100", cfg.N)
		}
	}
}

func TestRunStridesStopsOnError(t *testing.T) {
	prober := &fakeStrideProber{failAt: 2}
	sink := &strideRecorder{}

	rows, err := RunStrides(context.Background(), testLogger(), prober,
		StridePlan{N: 10, Strides: []int{1, 2, 3}}, sink)
	if err == nil {
		t.Fatal("expected error")
	}

	if rows != 1 || len(prober.calls) != 2 {
		t.Errorf("rows = %d, calls = %d, want 1 and 2", rows, len(prober.calls))
	}
}

func TestRunStridesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &fakeStrideProber{}

	_, err := RunStrides(ctx, testLogger(), prober, StridePlan{N: 10, Strides: []int{1}}, &strideRecorder{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(prober.calls) != 0 {
		t.Errorf("calls = %d after cancel, want 0", len(prober.calls))
	}
}

func TestRunStridesWithRunner(t *testing.T) {
	runner := harness.NewRunner(workload.NewGenerator(workload.Config{Seed: 1}), testLogger())
	sink := &strideRecorder{}

	rows, err := RunStrides(context.Background(), testLogger(), runner,
		StridePlan{N: 256, Strides: []int{1, 8}}, sink)
	if err != nil {
		t.Fatalf("RunStrides failed: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}
}
