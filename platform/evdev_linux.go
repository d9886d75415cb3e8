//go:build linux

package platform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// struct input_event is a timeval followed by __u16 type, __u16 code, __s32 value
var (
	timevalSize = int(unsafe.Sizeof(unix.Timeval{}))
	eventSize   = timevalSize + 8
)

const (
	iocRead      = 2
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	nameBufferSize = 256
)

// EvdevDevice is a Linux evdev node opened for reading
type EvdevDevice struct {
	file    *os.File
	path    string
	name    string
	buf     []byte
	pending []Event
}

// Open opens the evdev node at path and reads its display name
func Open(path string) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", path, err)
	}

	name, err := deviceName(f)
	if err != nil {
		slog.Warn("Failed to read device name", "path", path, "error", err)
		name = "unknown"
	}

	return &EvdevDevice{
		file: f,
		path: path,
		name: name,
		buf:  make([]byte, eventSize*64),
	}, nil
}

func (d *EvdevDevice) Path() string { return d.path }

func (d *EvdevDevice) Name() string { return d.name }

// ReadEvent returns the next event, reading a batch from the kernel when
// the previous batch is exhausted
func (d *EvdevDevice) ReadEvent() (Event, error) {
	for len(d.pending) == 0 {
		n, err := d.file.Read(d.buf)
		if err != nil {
			return Event{}, err
		}
		d.pending = decodeEvents(d.buf[:n], d.pending[:0])
	}

	ev := d.pending[0]
	d.pending = d.pending[1:]
	return ev, nil
}

func (d *EvdevDevice) Close() error {
	return d.file.Close()
}

// decodeEvents appends every complete input_event in buf to out
func decodeEvents(buf []byte, out []Event) []Event {
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off+timevalSize : off+eventSize]
		out = append(out, Event{
			Type:  EventType(binary.NativeEndian.Uint16(rec[0:2])),
			Code:  KeyCode(binary.NativeEndian.Uint16(rec[2:4])),
			Value: int32(binary.NativeEndian.Uint32(rec[4:8])),
		})
	}
	return out
}

// eviocgname builds the EVIOCGNAME(len) request number
func eviocgname(length int) uintptr {
	return uintptr(iocRead<<iocDirShift | length<<iocSizeShift | 'E'<<iocTypeShift | 0x06<<iocNRShift)
}

func deviceName(f *os.File) (string, error) {
	raw, err := f.SyscallConn()
	if err != nil {
		return "", err
	}

	buf := make([]byte, nameBufferSize)
	var errno unix.Errno
	err = raw.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, eviocgname(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	})
	if err != nil {
		return "", err
	}
	if errno != 0 {
		return "", fmt.Errorf("EVIOCGNAME: %w", errno)
	}

	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}
