// Package server provides the HTTP surface of the camera server: the viewer
// page, the MJPEG stream, the save action and a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/picam/internal/app"
	"github.com/ayusman/picam/internal/capture"
	"github.com/ayusman/picam/internal/framestore"
	"github.com/ayusman/picam/internal/server/api"
	"github.com/ayusman/picam/internal/store"
)

// CaptureStats reports capture loop counters.
type CaptureStats interface {
	Stats() app.Stats
}

// Config holds the server configuration.
type Config struct {
	Frames        *framestore.Store
	Encoder       capture.Encoder
	Saver         Saver
	Store         *store.Store
	Capture       CaptureStats
	SaveDir       string
	PollInterval  time.Duration
	FrameInterval time.Duration
}

// Server represents the HTTP server for the camera.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	http    *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Encoder == nil {
		config.Encoder = capture.NewJPEGEncoder(capture.DefaultJPEGQuality)
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:  config,
		mux:     http.NewServeMux(),
		start:   time.Now(),
		baseCtx: baseCtx,
		cancel:  cancel,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)

	// Register stream endpoints if a frame store is configured
	if s.config.Frames != nil {
		cfg := s.config
		s.mux.Handle("/video_feed", NewStreamHandler(cfg.Frames, cfg.Encoder, cfg.PollInterval, cfg.FrameInterval))
		s.mux.Handle("/ws/stream", NewWSStreamHandler(cfg.Frames, cfg.Encoder, cfg.PollInterval, cfg.FrameInterval))
	}

	if s.config.Saver != nil {
		s.mux.Handle("/save_image", NewSaveHandler(s.config.Saver))
	}

	// Register snapshot catalogue if Store is configured
	if s.config.Store != nil {
		snapshots := api.NewSnapshotHandler(s.config.Store)
		s.mux.Handle("/api/snapshots", snapshots)
		s.mux.Handle("/api/snapshots/", snapshots)
	}

	// Serve saved files read-only
	if s.config.SaveDir != "" {
		fs := http.FileServer(http.Dir(s.config.SaveDir))
		s.mux.Handle(api.FilesPrefix, http.StripPrefix(api.FilesPrefix, readOnly(fs)))
	}
}

// readOnly rejects anything but GET and HEAD, and serves only plain file
// names: no directory listing and no dotfiles such as in-progress writes.
func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := r.URL.Path
		if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type statusResponse struct {
	HasFrame          bool   `json:"has_frame"`
	FrameSeq          uint64 `json:"frame_seq"`
	LastFrameAt       string `json:"last_frame_at,omitempty"`
	CaptureRunning    bool   `json:"capture_running"`
	SourceOpen        bool   `json:"source_open"`
	FramesCaptured    uint64 `json:"frames_captured"`
	ReadFailures      uint64 `json:"read_failures"`
	TransformFailures uint64 `json:"transform_failures"`
}

// handleStatus handles GET /api/status with frame store and capture loop state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp statusResponse
	if s.config.Frames != nil {
		resp.FrameSeq = s.config.Frames.Seq()
		if at, ok := s.config.Frames.LastCapture(); ok {
			resp.HasFrame = true
			resp.LastFrameAt = at.Format(time.RFC3339Nano)
		}
	}
	if s.config.Capture != nil {
		st := s.config.Capture.Stats()
		resp.CaptureRunning = st.Running
		resp.SourceOpen = st.SourceOpen
		resp.FramesCaptured = st.FramesCaptured
		resp.ReadFailures = st.ReadFailures
		resp.TransformFailures = st.TransformFailures
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

// ListenAndServe starts the HTTP server on the given address.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:        addr,
		Handler:     s,
		BaseContext: s.baseContext,
	}
	srv := s.http
	s.mu.Unlock()

	return srv.ListenAndServe()
}

// baseContext parents every request context, so Shutdown can end streams.
func (s *Server) baseContext(net.Listener) context.Context {
	return s.baseCtx
}

// Shutdown stops accepting connections and ends in-flight streams, which
// would otherwise never become idle.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
