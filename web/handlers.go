package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"devicectrl/inputbridge/devices"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Connection    string               `json:"connection"`
	Devices       []devices.DeviceInfo `json:"devices"`
	QueueDepth    int                  `json:"queue_depth"`
	QueueCapacity int                  `json:"queue_capacity"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleStatus returns the current agent status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Connection:    s.conn.State().String(),
		Devices:       s.devices.Snapshot(),
		QueueDepth:    s.queue.Len(),
		QueueCapacity: s.queue.Cap(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode status", "error", err)
	}
}
