// Package web serves the optional local status endpoints: health, status
// JSON, Prometheus metrics and a live websocket feed.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"devicectrl/inputbridge/devices"
	"devicectrl/inputbridge/metrics"
	"devicectrl/inputbridge/protocol"
	"devicectrl/inputbridge/transport"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local status page only
	},
}

// Connection reports the transport state
type Connection interface {
	State() transport.State
}

// DeviceLister reports the devices with a running listener
type DeviceLister interface {
	Snapshot() []devices.DeviceInfo
}

// QueueStats reports outbound queue occupancy
type QueueStats interface {
	Len() int
	Cap() int
}

// Server represents the status server
type Server struct {
	addr    string
	conn    Connection
	devices DeviceLister
	queue   QueueStats
	hub     *Hub
	router  chi.Router
}

// NewServer creates a status server listening on addr
func NewServer(addr string, conn Connection, devs DeviceLister, queue QueueStats) *Server {
	s := &Server{
		addr:    addr,
		conn:    conn,
		devices: devs,
		queue:   queue,
	}
	s.hub = NewHub(s.connectionMessage)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to shut down status server", "error", err)
		}
	}()

	slog.Info("Starting status server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StateChanged broadcasts a connection state change to all connected clients
func (s *Server) StateChanged(state transport.State) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeConnection,
		Data: ConnectionMessage{State: state.String()},
	})
}

// ActionSent broadcasts a delivered action to all connected clients
func (s *Server) ActionSent(action protocol.Action) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeAction,
		Data: action,
	})
}

func (s *Server) connectionMessage() Message {
	return Message{
		Type: MessageTypeConnection,
		Data: ConnectionMessage{State: s.conn.State().String()},
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	if !s.hub.Register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
