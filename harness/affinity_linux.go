//go:build linux

package harness

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinThread locks the calling goroutine to its OS thread and restricts that
// thread to cpu. The returned function restores the previous affinity and
// unlocks the thread; it must be called from the same goroutine.
func PinThread(cpu int) (func(), error) {
	if cpu < 0 {
		return nil, fmt.Errorf("cpu must be non-negative, got %d", cpu)
	}

	runtime.LockOSThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		runtime.UnlockOSThread()

		return nil, fmt.Errorf("get affinity: %w", err)
	}

	var set unix.CPUSet
	set.Set(cpu)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()

		return nil, fmt.Errorf("pin to cpu %d: %w", cpu, err)
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}, nil
}
