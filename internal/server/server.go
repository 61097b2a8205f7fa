// Package server provides the HTTP surface of the vision event service:
// health and status queries, the websocket event stream and the debug
// endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/server/api"
	"github.com/ayusman/drishti/internal/store"
)

// DefaultTickInterval is the inter-tick delay of the event stream,
// targeting ~15 events per second.
const DefaultTickInterval = 67 * time.Millisecond

// DefaultServiceName identifies the service in health responses.
const DefaultServiceName = "Drishti Vision Service"

// Config holds the server configuration.
type Config struct {
	App          *app.App
	Store        *store.Store
	ServiceName  string
	TickInterval time.Duration
	Debug        bool
}

// Server represents the HTTP server for the vision service.
type Server struct {
	config Config
	mux    *http.ServeMux
	stream *StreamHandler
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.ServiceName == "" {
		config.ServiceName = DefaultServiceName
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleHealth)
	s.mux.HandleFunc("/vision/status", s.handleStatus)

	s.stream = NewStreamHandler(s.config.App, s.config.TickInterval)
	s.mux.Handle("/vision/stream", s.stream)

	s.mux.Handle("/vision/snapshot", NewSnapshotHandler(s.config.App))

	if s.config.Debug {
		s.mux.Handle("/vision/debug/stream", NewDebugStreamHandler(s.config.App))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to the root path: static service
// identity plus current camera availability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// "/" matches everything not routed elsewhere
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":           "running",
		"service":          s.config.ServiceName,
		"camera_available": s.config.App.CameraAvailable(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleStatus handles GET requests to /vision/status: a snapshot of
// process-wide state updated by the most recent tick, independent of the
// streaming channel.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.App.Status()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown asks active stream sessions to finish their current tick and
// exit, then shuts the HTTP server down gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stream.Shutdown()
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
