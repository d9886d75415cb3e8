// Package devices turns input device events into outbound actions.
//
// Every open device is read by its own listener goroutine. Listeners share
// nothing but the read-only trigger table and the outbound queue, and never
// learn anything about the server connection.
package devices

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"devicectrl/inputbridge/metrics"
	"devicectrl/inputbridge/outbound"
	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/triggers"
)

// ErrDeviceRemoved is returned by Listen when the device stream ends
var ErrDeviceRemoved = errors.New("device removed")

// Listen reads events from dev until its stream ends or a read fails,
// sending the actions of every matching trigger to sender. It always
// returns a non-nil error describing why listening stopped.
func Listen(dev platform.Device, table *triggers.Table, sender *outbound.Sender) error {
	name := dev.Name()
	slog.Info("Listening for events", "device", name, "path", dev.Path())

	for {
		ev, err := dev.ReadEvent()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s (%s): %w", name, dev.Path(), ErrDeviceRemoved)
		}
		if err != nil {
			return fmt.Errorf("failed to read event from %s (%s): %w", name, dev.Path(), err)
		}
		dispatch(name, ev, table, sender)
	}
}

// dispatch matches one raw event and enqueues the resulting actions in order
func dispatch(device string, ev platform.Event, table *triggers.Table, sender *outbound.Sender) {
	if !ev.Pressed() {
		if ev.Type == platform.EvKey {
			metrics.Events.WithLabelValues(metrics.ResultIgnored).Inc()
		}
		return
	}

	actions := table.Match(device, ev.Code, ev.Value)
	if len(actions) == 0 {
		metrics.Events.WithLabelValues(metrics.ResultUnmatched).Inc()
		slog.Warn("Unhandled input", "device", device, "key", ev.Code)
		return
	}
	metrics.Events.WithLabelValues(metrics.ResultMatched).Inc()

	for _, action := range actions {
		slog.Debug("Queueing action", "device", device, "key", ev.Code, "action", action)
		if err := sender.Send(action); err != nil {
			metrics.ActionsDropped.Inc()
			slog.Error("Failed to send input action", "device", device, "action", action, "error", err)
			continue
		}
		metrics.ActionsEnqueued.Inc()
	}
}
