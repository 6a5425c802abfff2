// Package server delivers the mind-map viewer to browsers: a websocket
// session per tab drives its own viewer state, an upload endpoint replaces
// the shared map, and Prometheus metrics cover layout cost and usage.
package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/chazu/mindscape/pkg/config"
	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/chazu/mindscape/pkg/viewer"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

//go:embed static
var static embed.FS

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// Server serves one shared mind map to any number of viewer sessions.
type Server struct {
	cfg      config.Config
	registry *prometheus.Registry
	metrics  *metrics
	upgrader websocket.Upgrader
	handler  http.Handler

	mu sync.RWMutex
	m  *mindmap.Map

	sessionsMu sync.Mutex
	sessions   map[*session]struct{}
}

// New returns a Server showing m.
func New(cfg config.Config, m *mindmap.Map) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		registry: reg,
		metrics:  newMetrics(reg),
		m:        m,
		sessions: make(map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The viewer is a local tool; any origin may connect, as with
			// the upload endpoint's CORS policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	assets, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/mindmap", s.handleExport)
	mux.HandleFunc("POST /api/mindmap", s.handleUpload)
	mux.HandleFunc("OPTIONS /api/mindmap", s.handlePreflight)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("GET /", http.FileServer(http.FS(assets)))
	s.handler = mux
	return s
}

// Handler returns the HTTP handler for all endpoints.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Map returns the current map.
func (s *Server) Map() *mindmap.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

// SetMap replaces the shared map and reloads every open session. m must
// not be nil. SetMap is safe for concurrent use.
func (s *Server) SetMap(m *mindmap.Map) {
	s.mu.Lock()
	s.m = m
	s.mu.Unlock()

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for ss := range s.sessions {
		ss.reloadWith(m)
	}
	log.WithFields(log.Fields{
		"title":    m.Title,
		"nodes":    m.Count(),
		"sessions": len(s.sessions),
	}).Info("mind map replaced")
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("serving mind-map viewer")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down http server")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// viewerOptions returns the configured viewer options with layout timing
// reported to metrics.
func (s *Server) viewerOptions() viewer.Options {
	opts := s.cfg.ViewerOptions()
	opts.OnLayout = s.metrics.observeLayout
	return opts
}

func (s *Server) addSession(ss *session) {
	s.sessionsMu.Lock()
	s.sessions[ss] = struct{}{}
	s.sessionsMu.Unlock()
	s.metrics.sessions.Inc()
}

func (s *Server) removeSession(ss *session) {
	s.sessionsMu.Lock()
	delete(s.sessions, ss)
	s.sessionsMu.Unlock()
	s.metrics.sessions.Dec()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	// Register before reading the map so no SetMap can slip between them.
	ss := newSession(s, conn, r.RemoteAddr)
	s.addSession(ss)
	defer s.removeSession(ss)
	ss.run(r.Context())
}
