// Package platformtest provides an in-memory input device for tests of
// code built on platform.Device
package platformtest

import (
	"io"
	"sync"
	"sync/atomic"

	"devicectrl/inputbridge/platform"
)

// FakeDevice is an in-memory platform.Device
type FakeDevice struct {
	path   string
	name   string
	events chan platform.Event
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
}

// NewFakeDevice creates a fake device that yields events passed to Emit
func NewFakeDevice(path, name string) *FakeDevice {
	return &FakeDevice{
		path:   path,
		name:   name,
		events: make(chan platform.Event, 64),
		done:   make(chan struct{}),
	}
}

func (d *FakeDevice) Path() string { return d.path }

func (d *FakeDevice) Name() string { return d.name }

// Emit queues an event for the reader
func (d *FakeDevice) Emit(ev platform.Event) {
	d.events <- ev
}

// Press queues a key press of code
func (d *FakeDevice) Press(code platform.KeyCode) {
	d.Emit(platform.Event{Type: platform.EvKey, Code: code, Value: 1})
}

// Unplug ends the event stream once queued events are consumed
func (d *FakeDevice) Unplug() {
	d.once.Do(func() { close(d.done) })
}

func (d *FakeDevice) ReadEvent() (platform.Event, error) {
	select {
	case ev := <-d.events:
		return ev, nil
	default:
	}
	select {
	case ev := <-d.events:
		return ev, nil
	case <-d.done:
		return platform.Event{}, io.EOF
	}
}

func (d *FakeDevice) Close() error {
	d.closed.Store(true)
	d.Unplug()
	return nil
}

// Closed reports whether Close was called
func (d *FakeDevice) Closed() bool {
	return d.closed.Load()
}
