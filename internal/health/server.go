package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Status is implemented by the bot so the endpoint can report live
// numbers without owning any state.
type Status interface {
	SubscriberCount() int64
	PollerRunning() bool
}

// Server exposes a small HTTP status surface for platform
// healthchecks.
type Server struct {
	addr   string
	status Status
	http   *http.Server
}

func NewServer(addr string, status Status) *Server {
	return &Server{addr: addr, status: status}
}

func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	s.http = &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		log.Info().Str("addr", s.addr).Msg("health server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
}

func (s *Server) Stop() {
	if s.http != nil {
		s.http.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"subscribers":        s.status.SubscriberCount(),
		"auto_check_running": s.status.PollerRunning(),
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("could not encode health response")
	}
}
