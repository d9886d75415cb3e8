package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"

	"devicectrl/inputbridge/config"
	"devicectrl/inputbridge/devices"
	"devicectrl/inputbridge/outbound"
	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/transport"
	"devicectrl/inputbridge/web"
)

// Agent coordinates the server transport, device listeners and the device monitor
type Agent struct {
	cfg       *config.Config
	open      platform.Opener
	transport *transport.Transport
	registry  *devices.Registry
	monitor   *devices.Monitor
	status    *web.Server
}

// NewAgent creates a new agent instance. Devices are opened with open; the
// status server is started only when statusAddr is set.
func NewAgent(cfg *config.Config, open platform.Opener, statusAddr string) (*Agent, error) {
	queue := outbound.New(cfg.QueueSize)

	tr, err := transport.New(cfg.ServerConnection, queue)
	if err != nil {
		return nil, err
	}

	registry := devices.NewRegistry(cfg.TriggerTable(), queue.Sender())

	a := &Agent{
		cfg:       cfg,
		open:      open,
		transport: tr,
		registry:  registry,
		monitor:   devices.NewMonitor(cfg.DeviceDir, open, registry),
	}

	if statusAddr != "" {
		a.status = web.NewServer(statusAddr, tr, registry, queue)
		tr.SetObserver(a.status)
	}
	return a, nil
}

// Run starts every component and blocks until ctx is done or one of them
// fails in a way the agent cannot recover from
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)

	go func() {
		if err := a.transport.Run(ctx); err != nil {
			errs <- fmt.Errorf("transport stopped: %w", err)
		}
	}()

	devs, err := platform.Enumerate(a.cfg.DeviceDir, a.open)
	if err != nil {
		return fmt.Errorf("failed to enumerate devices in %s: %w", a.cfg.DeviceDir, err)
	}
	for _, dev := range devs {
		a.registry.Spawn(dev)
	}

	go func() {
		if err := a.monitor.Run(ctx); err != nil {
			errs <- fmt.Errorf("device monitor stopped: %w", err)
		}
	}()

	if a.status != nil {
		go func() {
			if err := a.status.Run(ctx); err != nil {
				errs <- fmt.Errorf("status server stopped: %w", err)
			}
		}()
	}

	select {
	case <-a.monitor.Ready():
	case err := <-errs:
		return a.stop(ctx, err)
	case <-ctx.Done():
		return a.stop(ctx, nil)
	}

	notifyReady()
	slog.Info("inputbridge started",
		"server", a.cfg.ServerConnection.ServerAddr,
		"devices", len(devs),
		"triggers", len(a.cfg.Actions),
	)

	select {
	case err := <-errs:
		return a.stop(ctx, err)
	case <-ctx.Done():
		return a.stop(ctx, nil)
	}
}

// stop reports why the agent is exiting. Errors caused by shutdown itself
// are not failures.
func (a *Agent) stop(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		slog.Info("inputbridge stopped")
		return nil
	}
	return err
}

// Devices lists the devices with a running listener
func (a *Agent) Devices() []devices.DeviceInfo {
	return a.registry.Snapshot()
}

func notifyReady() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		slog.Warn("Failed to notify service manager", "error", err)
		return
	}
	if sent {
		slog.Debug("Notified service manager")
	}
}
