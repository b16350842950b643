//go:build linux

package harness

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestPinThread(t *testing.T) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		t.Skipf("sched_getaffinity unavailable: %v", err)
	}

	cpu := -1
	for i := 0; i < 1024; i++ {
		if allowed.IsSet(i) {
			cpu = i

			break
		}
	}
	if cpu < 0 {
		t.Skip("no allowed cpu found")
	}

	unpin, err := PinThread(cpu)
	if err != nil {
		t.Fatalf("PinThread(%d) failed: %v", cpu, err)
	}
	defer unpin()

	var got unix.CPUSet
	if err := unix.SchedGetaffinity(0, &got); err != nil {
		t.Fatalf("sched_getaffinity failed: %v", err)
	}

	if got.Count() != 1 || !got.IsSet(cpu) {
		t.Errorf("affinity after pin has %d cpus, want only cpu %d", got.Count(), cpu)
	}
}

func TestPinThreadNegative(t *testing.T) {
	if _, err := PinThread(-1); err == nil {
		t.Error("expected error for negative cpu")
	}
}
