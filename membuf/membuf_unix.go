//go:build unix

package membuf

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func allocate(n int) (*Vector, error) {
	raw, err := unix.Mmap(-1, 0, n*elementSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}

	// mmap regions are page aligned, which satisfies float64 alignment.
	data := unsafe.Slice((*float64)(unsafe.Pointer(unsafe.SliceData(raw))), n)

	return &Vector{
		data:    data,
		raw:     raw,
		release: unix.Munmap,
	}, nil
}
