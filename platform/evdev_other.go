//go:build !linux

package platform

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by Open on systems without evdev
var ErrUnsupported = errors.New("evdev input devices are only available on linux")

// Open fails on this platform. Devices can still be supplied through a
// custom Opener.
func Open(path string) (Device, error) {
	return nil, fmt.Errorf("failed to open device %s: %w", path, ErrUnsupported)
}
