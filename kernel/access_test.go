package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStridedDaxpy(t *testing.T) {
	x := []float64{1, 9, 9, 1, 9, 9, 1, 9}
	y := []float64{1, 0, 0, 1, 0, 0, 1, 0}

	StridedDaxpy(2, x, y, 3, 3)

	want := []float64{3, 0, 0, 3, 0, 0, 3, 0}
	if diff := cmp.Diff(want, y); diff != "" {
		t.Errorf("y mismatch (-want +got):\n%s", diff)
	}
}

func TestStridedDaxpyUnitStride(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{1, 1, 1}

	StridedDaxpy(0.5, x, y, 3, 1)

	want := []float64{1.5, 2, 2.5}
	if diff := cmp.Diff(want, y); diff != "" {
		t.Errorf("y mismatch (-want +got):\n%s", diff)
	}
}

func TestChase(t *testing.T) {
	// 0 -> 2 -> 3 -> 1 -> 0
	next := []int64{2, 0, 3, 1}

	tests := []struct {
		steps int
		want  int64
	}{
		{0, 0},
		{1, 2},
		{3, 1},
		{4, 0},
		{9, 2},
	}

	for _, tt := range tests {
		if got := Chase(next, tt.steps); got != tt.want {
			t.Errorf("Chase(%d steps) = %d, want %d", tt.steps, got, tt.want)
		}
	}
}
