// Package transport owns the agent's single connection to the server.
//
// The connection is TCP with keepalive probing, wrapped in mutual TLS and
// framed as newline-delimited JSON. Any fault tears the connection down;
// after a fixed delay a new one is built from scratch.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"devicectrl/inputbridge/config"
	"devicectrl/inputbridge/metrics"
	"devicectrl/inputbridge/outbound"
	"devicectrl/inputbridge/protocol"
)

// ErrQueueClosed is returned by Run when every producer of the outbound
// queue has gone away
var ErrQueueClosed = errors.New("outbound queue closed by all producers")

// dialTimeout bounds connecting plus the TLS handshake
const dialTimeout = 10 * time.Second

// State is the connection state
type State int32

const (
	Disconnected State = iota
	Handshaking
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Handshaking:
		return "handshaking"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Observer is notified of state changes and delivered actions. Calls are
// made from the transport goroutine and must not block.
type Observer interface {
	StateChanged(State)
	ActionSent(protocol.Action)
}

type Transport struct {
	addr     string
	tls      *tls.Config
	dialer   net.Dialer
	delay    time.Duration
	queue    *outbound.Queue
	observer Observer

	state atomic.Int32

	// dequeued action whose write has not succeeded yet
	pending *protocol.Action
}

// New prepares a transport draining queue. Malformed trust or identity
// material is reported here, before any connection attempt.
func New(cfg config.ServerConnectionConfig, queue *outbound.Queue) (*Transport, error) {
	tlsConfig, err := NewTLSConfig(cfg.ServerDomain, cfg.ServerCA, cfg.Cert, cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS config: %w", err)
	}

	keepalive := time.Duration(cfg.Keepalive)
	return &Transport{
		addr: cfg.ServerAddr,
		tls:  tlsConfig,
		dialer: net.Dialer{
			KeepAliveConfig: net.KeepAliveConfig{
				Enable:   true,
				Idle:     keepalive,
				Interval: keepalive,
				Count:    3,
			},
		},
		delay: time.Duration(cfg.ReconnectDelay),
		queue: queue,
	}, nil
}

// SetObserver registers o. It must be called before Run.
func (t *Transport) SetObserver(o Observer) {
	t.observer = o
}

// State returns the current connection state
func (t *Transport) State() State {
	return State(t.state.Load())
}

func (t *Transport) setState(s State) {
	if State(t.state.Swap(int32(s))) == s {
		return
	}
	if s == Connected {
		metrics.Connected.Set(1)
	} else {
		metrics.Connected.Set(0)
	}
	if t.observer != nil {
		t.observer.StateChanged(s)
	}
}

// Run connects, serves and reconnects until ctx is done or the outbound
// queue is closed. Connection faults never end Run. When Run returns the
// queue is detached so producers stop blocking on it.
func (t *Transport) Run(ctx context.Context) error {
	defer t.queue.Detach()

	retry := backoff.NewConstantBackOff(t.delay)
	for {
		err := t.connect(ctx)
		t.setState(Disconnected)

		if errors.Is(err, ErrQueueClosed) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := retry.NextBackOff()
		metrics.ConnectionFailures.Inc()
		slog.Error("Connection to server failed", "addr", t.addr, "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// connect runs one Handshaking -> Connected cycle and returns why it ended
func (t *Transport) connect(ctx context.Context) error {
	t.setState(Handshaking)
	metrics.ConnectionAttempts.Inc()

	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	t.setState(Connected)
	slog.Info("Connected to server", "addr", t.addr, "server", t.tls.ServerName)

	return t.serve(ctx, conn)
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	raw, err := t.dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", t.addr, err)
	}

	conn := tls.Client(raw, t.tls)
	if err := conn.HandshakeContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("failed TLS handshake with %s: %w", t.addr, err)
	}
	return conn, nil
}

// serve forwards queued actions over conn while consuming inbound lines.
// A carried-over action is written before anything else.
func (t *Transport) serve(ctx context.Context, conn net.Conn) error {
	inbound := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		lines := NewLineReader(conn)
		for {
			line, err := lines.ReadLine()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- line:
			case <-done:
				return
			}
		}
	}()

	if t.pending != nil {
		slog.Debug("Resending carried over action", "action", *t.pending)
		if err := t.send(conn, *t.pending); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case action, ok := <-t.queue.Actions():
			if !ok {
				slog.Error("Outbound queue closed", "error", ErrQueueClosed)
				return ErrQueueClosed
			}
			t.pending = &action
			if err := t.send(conn, action); err != nil {
				return err
			}

		case line := <-inbound:
			handleInbound(line)

		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return errors.New("server closed the connection")
			}
			return fmt.Errorf("failed to read from server: %w", err)
		}
	}
}

// send writes one framed action and clears the carried-over slot on success
func (t *Transport) send(w io.Writer, action protocol.Action) error {
	line, err := protocol.EncodeLine(action)
	if err != nil {
		// retrying cannot make it encodable
		t.pending = nil
		metrics.ActionsDropped.Inc()
		return fmt.Errorf("failed to encode action %s: %w", action, err)
	}
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("failed to send action %s: %w", action, err)
	}

	t.pending = nil
	metrics.ActionsSent.Inc()
	slog.Debug("Sent action", "action", action)
	if t.observer != nil {
		t.observer.ActionSent(action)
	}
	return nil
}

func handleInbound(line []byte) {
	msg, err := protocol.ParseClientBound(line)
	if err != nil {
		slog.Warn("Ignoring malformed message from server", "error", err, "line", string(line))
		return
	}
	slog.Debug("Message from server", "type", msg.Type, "payload", string(msg.Payload))
}
