package devices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"devicectrl/inputbridge/platform"
)

// Monitor watches the device directory and starts a listener for every
// event node that appears in it
type Monitor struct {
	dir      string
	open     platform.Opener
	registry *Registry
	ready    chan struct{}
}

// NewMonitor creates a monitor for dir. Devices are opened with open and
// handed to registry.
func NewMonitor(dir string, open platform.Opener, registry *Registry) *Monitor {
	return &Monitor{
		dir:      dir,
		open:     open,
		registry: registry,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory watch is in place and the nodes
// already present have been attached
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Run watches the directory until ctx is done or the watch fails. Failing
// to set up the watch, or losing its event stream, is returned as an error
// since no further devices could be observed.
func (m *Monitor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", m.dir, err)
	}
	// Nodes created before the watch was added produce no event
	m.rescan()
	close(m.ready)
	slog.Info("Watching for new devices", "dir", m.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("device watch event stream closed")
			}
			m.handle(ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("device watch error stream closed")
			}
			slog.Error("Failed to handle filesystem event", "dir", m.dir, "error", err)
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				m.rescan()
			}
		}
	}
}

func (m *Monitor) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) || !platform.IsDeviceNode(ev.Name) {
		return
	}
	m.attach(ev.Name)
}

// rescan picks up nodes whose create events were lost
func (m *Monitor) rescan() {
	paths, err := filepath.Glob(filepath.Join(m.dir, platform.DevicePrefix+"*"))
	if err != nil {
		slog.Error("Failed to rescan device directory", "dir", m.dir, "error", err)
		return
	}
	for _, path := range paths {
		m.attach(path)
	}
}

func (m *Monitor) attach(path string) {
	if m.registry.Active(path) {
		slog.Debug("Device already has a listener", "path", path)
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return
	}

	dev, err := m.open(path)
	if err != nil {
		slog.Error("Failed to open device", "path", path, "error", err)
		return
	}
	m.registry.Spawn(dev)
}
