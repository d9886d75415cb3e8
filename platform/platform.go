package platform

import (
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	// DefaultDeviceDir is where the kernel exposes evdev nodes
	DefaultDeviceDir = "/dev/input"
	// DevicePrefix is the file name prefix of evdev event nodes
	DevicePrefix = "event"
)

// EventType is the evdev event type of a raw event
type EventType uint16

const (
	EvSyn EventType = 0x00
	EvKey EventType = 0x01
	EvRel EventType = 0x02
	EvAbs EventType = 0x03
	EvMsc EventType = 0x04
)

// Event is one raw event read from an input device
type Event struct {
	Type  EventType
	Code  KeyCode
	Value int32
}

// Pressed reports whether the event is a key press transition.
// Releases (0) and autorepeat (2) are not presses.
func (e Event) Pressed() bool {
	return e.Type == EvKey && e.Value == 1
}

// Device is an open input device, owned by exactly one reader
type Device interface {
	// Path is the device node the handle was opened from
	Path() string
	// Name is the display name reported by the driver
	Name() string
	// ReadEvent blocks until the next event is available
	ReadEvent() (Event, error)
	Close() error
}

// Opener opens the device node at path
type Opener func(path string) (Device, error)

// IsDeviceNode reports whether a file name follows the event node naming convention
func IsDeviceNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), DevicePrefix)
}

// Enumerate opens every event node currently present in dir.
// Nodes that fail to open are logged and skipped.
func Enumerate(dir string, open Opener) ([]Device, error) {
	paths, err := filepath.Glob(filepath.Join(dir, DevicePrefix+"*"))
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		dev, err := open(path)
		if err != nil {
			slog.Error("Failed to open device", "path", path, "error", err)
			continue
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
