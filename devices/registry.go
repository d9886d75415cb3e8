package devices

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"devicectrl/inputbridge/metrics"
	"devicectrl/inputbridge/outbound"
	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/triggers"
)

// DeviceInfo describes a device with a running listener
type DeviceInfo struct {
	Path  string    `json:"path"`
	Name  string    `json:"name"`
	Since time.Time `json:"since"`
}

// Registry owns the running listeners, keyed by device path. An entry
// exists exactly as long as its listener runs; the handle is closed when
// the listener stops.
type Registry struct {
	table  *triggers.Table
	sender *outbound.Sender

	mu     sync.Mutex
	active map[string]DeviceInfo
	wg     sync.WaitGroup
}

// NewRegistry creates a registry whose listeners match against table and
// send through clones of sender
func NewRegistry(table *triggers.Table, sender *outbound.Sender) *Registry {
	return &Registry{
		table:  table,
		sender: sender,
		active: map[string]DeviceInfo{},
	}
}

// Spawn starts a listener for dev. If its path already has a listener the
// new handle is closed and Spawn returns false.
func (r *Registry) Spawn(dev platform.Device) bool {
	path := dev.Path()

	r.mu.Lock()
	if _, ok := r.active[path]; ok {
		r.mu.Unlock()
		slog.Warn("Device already has a listener", "path", path)
		_ = dev.Close()
		return false
	}
	r.active[path] = DeviceInfo{Path: path, Name: dev.Name(), Since: time.Now()}
	metrics.DevicesActive.Set(float64(len(r.active)))
	r.wg.Add(1)
	r.mu.Unlock()

	sender := r.sender.Clone()
	go func() {
		defer r.wg.Done()
		defer sender.Close()

		err := Listen(dev, r.table, sender)
		slog.Warn("Stopped listening for events", "device", dev.Name(), "path", path, "reason", err)

		if cerr := dev.Close(); cerr != nil {
			slog.Debug("Failed to close device", "path", path, "error", cerr)
		}
		r.remove(path)
	}()
	return true
}

func (r *Registry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, path)
	metrics.DevicesActive.Set(float64(len(r.active)))
}

// Active reports whether path currently has a listener
func (r *Registry) Active(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[path]
	return ok
}

// Snapshot lists the active devices ordered by path
func (r *Registry) Snapshot() []DeviceInfo {
	r.mu.Lock()
	out := make([]DeviceInfo, 0, len(r.active))
	for _, info := range r.active {
		out = append(out, info)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b DeviceInfo) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Wait blocks until every listener started so far has stopped
func (r *Registry) Wait() {
	r.wg.Wait()
}
