package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/weiihann/bwprobe/kernel"
)

func TestReadSweepFromWriter(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewSweepWriter(&buf, kernel.Dot)
	if err != nil {
		t.Fatalf("NewSweepWriter failed: %v", err)
	}
	for trial := 1; trial <= 2; trial++ {
		if err := w.Write(trial, dotMeasurement()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	sweep, err := ReadSweep(&buf)
	if err != nil {
		t.Fatalf("ReadSweep failed: %v", err)
	}

	if sweep.Kernel != kernel.Dot {
		t.Errorf("kernel = %v, want dot", sweep.Kernel)
	}

	want := []Row{
		{Trial: 1, N: 32, Repeat: 312500, Elapsed: 0.002, BandwidthGBps: 80.12, DotResult: 8123456.79},
		{Trial: 2, N: 32, Repeat: 312500, Elapsed: 0.002, BandwidthGBps: 80.12, DotResult: 8123456.79},
	}
	if diff := cmp.Diff(want, sweep.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSweepAdd(t *testing.T) {
	input := "Trial,N,Repeat,Elapsed,Bandwidth_GBps\n1,64,156250,0.004000,60.00\n"

	sweep, err := ReadSweep(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSweep failed: %v", err)
	}

	if sweep.Kernel != kernel.Add || len(sweep.Rows) != 1 {
		t.Fatalf("sweep = %+v", sweep)
	}
	if sweep.Rows[0].DotResult != 0 {
		t.Errorf("dot result = %v, want 0", sweep.Rows[0].DotResult)
	}
}

func TestReadSweepMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single-run rows", "add,1000,5,0.1,2.0\n"},
		{"bad number", "Trial,N,Repeat,Elapsed,Bandwidth_GBps\n1,x,1,0.1,2\n"},
		{"short row", "Trial,N,Repeat,Elapsed,Bandwidth_GBps\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSweep(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}
