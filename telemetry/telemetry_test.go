package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/kernel"
)

func TestObserve(t *testing.T) {
	e, err := NewExporter(nil)
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	e.Observe(harness.Measurement{
		Kernel: kernel.Dot, N: 1000, Repeat: 5,
		Elapsed: 2 * time.Millisecond, BandwidthGBps: 2.5,
	})
	e.Observe(harness.Measurement{
		Kernel: kernel.Dot, N: 1000, Repeat: 5,
		Elapsed: time.Millisecond, BandwidthGBps: 4,
	})

	if got := testutil.ToFloat64(e.bandwidth.WithLabelValues("dot", "1000")); got != 4 {
		t.Errorf("bandwidth gauge = %v, want latest value 4", got)
	}
	if got := testutil.ToFloat64(e.elapsed.WithLabelValues("dot", "1000")); got != 0.001 {
		t.Errorf("elapsed gauge = %v, want 0.001", got)
	}

	want := `
# HELP bwprobe_measurements_total Number of measurements taken.
# TYPE bwprobe_measurements_total counter
bwprobe_measurements_total{kernel="dot"} 2
`
	if err := testutil.GatherAndCompare(e.Gatherer(), strings.NewReader(want),
		"bwprobe_measurements_total"); err != nil {
		t.Errorf("gathered counter mismatch: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	e, err := NewExporter(map[string]string{"job_id": "123456", "user_id": "1001"})
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	e.Observe(harness.Measurement{Kernel: kernel.Add, N: 32, BandwidthGBps: 15.5})

	path := filepath.Join(t.TempDir(), "bwprobe.prom")
	if err := e.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}

	output := string(data)
	want := `bwprobe_bandwidth_gbps{job_id="123456",kernel="add",n="32",user_id="1001"} 15.5`
	if !strings.Contains(output, want) {
		t.Errorf("textfile missing %q:\n%s", want, output)
	}
	if !strings.Contains(output, "bwprobe_measurements_total") {
		t.Errorf("textfile missing counter:\n%s", output)
	}
}

func TestNewExporterInvalidLabel(t *testing.T) {
	if _, err := NewExporter(map[string]string{"bad-label": "x"}); err == nil {
		t.Error("expected error for invalid label name")
	}
}
