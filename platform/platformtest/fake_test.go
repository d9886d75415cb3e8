package platformtest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"devicectrl/inputbridge/platform"
)

func TestFakeDeviceDrainsBeforeEOF(t *testing.T) {
	dev := NewFakeDevice("/dev/input/event9", "remote")
	dev.Press(30)
	dev.Unplug()

	ev, err := dev.ReadEvent()
	if err != nil || !ev.Pressed() || ev.Code != 30 {
		t.Fatalf("expected queued press, got %+v err %v", ev, err)
	}
	if _, err := dev.ReadEvent(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after unplug, got %v", err)
	}
	if dev.Closed() {
		t.Fatalf("unplug marked the device closed")
	}
	if err := dev.Close(); err != nil || !dev.Closed() {
		t.Fatalf("close: %v", err)
	}
}

func TestEnumerateSkipsFailedOpens(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"event0", "event1", "event2", "mice"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	open := func(path string) (platform.Device, error) {
		if filepath.Base(path) == "event1" {
			return nil, errors.New("permission denied")
		}
		return NewFakeDevice(path, filepath.Base(path)), nil
	}

	devices, err := platform.Enumerate(dir, open)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].Name() != "event0" || devices[1].Name() != "event2" {
		t.Fatalf("unexpected devices %q, %q", devices[0].Name(), devices[1].Name())
	}
}
