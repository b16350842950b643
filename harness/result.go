// Package harness runs a single memory bandwidth probe: it allocates two
// float64 arrays, fills them, warms them up, times the selected kernel and
// derives the achieved bandwidth.
package harness

import (
	"time"

	"github.com/weiihann/bwprobe/kernel"
)

// Measurement holds the outcome of one probe invocation. Bytes is the
// traffic implied by the kernel's access pattern and excludes the warm-up
// pass. DotResult is the accumulated dot product, zero for Add.
type Measurement struct {
	Kernel        kernel.Kernel
	N             int
	Repeat        int
	Elapsed       time.Duration
	Bytes         uint64
	BandwidthGBps float64
	DotResult     float64
	Seed          int64
}

// ElapsedSeconds returns the timed region's duration in seconds.
func (m Measurement) ElapsedSeconds() float64 {
	return m.Elapsed.Seconds()
}

// Bandwidth converts bytes moved over elapsed into GB/s (1e9 bytes). A
// zero or negative duration yields 0.
func Bandwidth(bytes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}

	return float64(bytes) / elapsed.Seconds() / 1e9
}
