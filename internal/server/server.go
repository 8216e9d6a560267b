// Package server provides the optional local debug server: engine state,
// match history, a camera preview stream and a live gesture diagnostics
// feed. It is read-only observability, not a gameplay surface.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handpong/internal/app"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/store"
)

// Config holds the server dependencies. Nil fields disable the routes
// that need them.
type Config struct {
	Engine *game.Engine
	App    *app.App
	Store  *store.Store
}

// Server is the debug HTTP server.
type Server struct {
	config      Config
	mux         *http.ServeMux
	start       time.Time
	diagnostics *DiagnosticsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Engine != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
	}

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/matches", s.handleMatches)
	}

	if s.config.App != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.diagnostics = NewDiagnosticsHandler(s.config.App.Smoother())
		s.mux.Handle("/api/diagnostics", s.diagnostics)
	}
}

// Close releases background resources, currently the diagnostics
// broadcaster. Safe to call more than once.
func (s *Server) Close() {
	if s.diagnostics != nil {
		s.diagnostics.Close()
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleState returns the current engine snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Engine.Snapshot()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleMatches returns the most recent finished matches.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	matches, err := s.config.Store.Matches().Recent(20)
	if err != nil {
		http.Error(w, "Failed to load matches", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []*store.Match{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(matches); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
