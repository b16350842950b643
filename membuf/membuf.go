// Package membuf allocates float64 arrays for bandwidth measurement.
//
// On unix systems the backing memory is an anonymous private mmap region
// outside the Go heap. The garbage collector never scans or moves it, an
// allocation that the kernel refuses is reported as an error instead of
// crashing the runtime, and the memory is returned to the system as soon
// as Close is called rather than at the next collection.
package membuf

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// ErrAlloc is returned when the backing memory cannot be obtained.
var ErrAlloc = errors.New("memory allocation failed")

const elementSize = 8

// Vector is a fixed-length array of 8-byte elements that must be released
// with Close. Float64s and Int64s view the same memory. A Vector must not be
// used after Close.
type Vector struct {
	data    []float64
	raw     []byte
	release func([]byte) error
	closed  bool
}

// New allocates a zeroed Vector of n elements.
func New(n int) (*Vector, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", ErrAlloc, n)
	}

	if n > math.MaxInt/elementSize {
		return nil, fmt.Errorf("%w: %d elements overflow the address space", ErrAlloc, n)
	}

	v, err := allocate(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %v", ErrAlloc, n*elementSize, err)
	}

	return v, nil
}

// Float64s returns the elements. The slice aliases the Vector's memory and
// is invalid after Close.
func (v *Vector) Float64s() []float64 {
	if v.closed {
		panic("membuf: use of closed vector")
	}

	return v.data
}

// Int64s returns the elements reinterpreted as int64. The slice aliases the
// Vector's memory and is invalid after Close.
func (v *Vector) Int64s() []int64 {
	data := v.Float64s()

	return unsafe.Slice((*int64)(unsafe.Pointer(unsafe.SliceData(data))), len(data))
}

// Len returns the number of elements. It is 0 once the Vector is closed.
func (v *Vector) Len() int {
	return len(v.data)
}

// Close releases the backing memory. Close is idempotent.
func (v *Vector) Close() error {
	if v == nil || v.closed {
		return nil
	}

	v.closed = true
	v.data = nil

	if v.release == nil {
		v.raw = nil

		return nil
	}

	err := v.release(v.raw)
	v.raw = nil

	if err != nil {
		return fmt.Errorf("membuf: release: %w", err)
	}

	return nil
}
