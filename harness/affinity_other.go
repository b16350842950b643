//go:build !linux

package harness

import (
	"errors"
)

// PinThread is only implemented on Linux.
func PinThread(cpu int) (func(), error) {
	return nil, errors.New("cpu pinning is not supported on this platform")
}
