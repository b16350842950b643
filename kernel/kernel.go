// Package kernel implements the numeric loops whose memory bandwidth is
// measured: a dot product and an in-place vector addition over float64
// arrays.
package kernel

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknown is returned by Parse for an unrecognized mode string.
var ErrUnknown = errors.New("unknown mode")

// elementSize is the size of one float64 in bytes.
const elementSize = 8

// Kernel selects the operation under test. The zero value is invalid.
type Kernel int

const (
	// Dot accumulates sum += A[i]*B[i]. It reads A and B.
	Dot Kernel = iota + 1
	// Add computes A[i] += B[i] in place. It reads A and B and writes A.
	Add
)

// Known returns the supported kernels in CLI order.
func Known() []Kernel {
	return []Kernel{Dot, Add}
}

// Parse resolves a mode string ("dot" or "add") into a Kernel.
func Parse(mode string) (Kernel, error) {
	for _, k := range Known() {
		if k.String() == mode {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w %q (use 'dot' or 'add')", ErrUnknown, mode)
}

// String returns the mode name used on the command line and in CSV rows.
func (k Kernel) String() string {
	switch k {
	case Dot:
		return "dot"
	case Add:
		return "add"
	default:
		return fmt.Sprintf("kernel(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kernels.
func (k Kernel) Valid() bool {
	return slices.Contains(Known(), k)
}

// Streams returns how many array elements are moved per index per pass:
// two reads for Dot, two reads and one write for Add.
func (k Kernel) Streams() int {
	switch k {
	case Dot:
		return 2
	case Add:
		return 3
	default:
		return 0
	}
}

// BytesMoved returns the bytes transferred by repeat passes over n
// elements.
func (k Kernel) BytesMoved(n, repeat int) uint64 {
	return uint64(k.Streams()) * uint64(n) * elementSize * uint64(repeat)
}

// Run executes repeat passes of the kernel over a and b and returns the
// accumulated dot product. For Add the result is always 0 and a is
// modified in place.
func (k Kernel) Run(a, b []float64, repeat int) float64 {
	switch k {
	case Dot:
		return DotProduct(a, b, repeat)
	case Add:
		VectorAdd(a, b, repeat)
	}

	return 0
}

// DotProduct returns the sum of a[i]*b[i] accumulated over repeat passes.
// The sum is never reset between passes.
func DotProduct(a, b []float64, repeat int) float64 {
	b = b[:len(a)]

	var sum float64
	for r := 0; r < repeat; r++ {
		for i := range a {
			sum += a[i] * b[i]
		}
	}

	return sum
}

// VectorAdd performs a[i] += b[i] for repeat passes.
func VectorAdd(a, b []float64, repeat int) {
	b = b[:len(a)]

	for r := 0; r < repeat; r++ {
		for i := range a {
			a[i] += b[i]
		}
	}
}

// Warmup touches both arrays once with a single accumulate pass so that
// pages are faulted in and caches are primed before a timed region.
func Warmup(a, b []float64) {
	VectorAdd(a, b, 1)
}
