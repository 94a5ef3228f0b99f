// Package adminapi is a read-only chi-routed HTTP surface for inspecting
// snapshots and driving the scan planner and merge reader without a
// compute-engine connector, in the style of this repo's internal/http
// server: a thin Server wrapping *http.Server, a createRouter method, and a
// writeJSON helper shared by every handler.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tablestore/pkg/scan"
	"tablestore/pkg/snapshot"
)

const defaultShutdownTimeout = 5 * time.Second

// Server serves the admin HTTP API.
type Server struct {
	planner         *scan.Planner
	store           *snapshot.Store
	cache           *scan.PlanCache
	partitionFields []string
	latestID        func() (uint64, bool)

	httpServer *http.Server
	addr       string
	log        *slog.Logger
}

// NewServer builds a Server. partitionFields names the table's partition
// columns in schema order, used to parse the ?partition= query parameter.
// latestID reports the highest snapshot id known to the process (typically
// the committer's SnapshotIDAllocator.Peek); it may be nil, in which case
// /snapshots/latest is unavailable.
func NewServer(planner *scan.Planner, store *snapshot.Store, cache *scan.PlanCache, partitionFields []string, port int, latestID func() (uint64, bool), log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		planner:         planner,
		store:           store,
		cache:           cache,
		partitionFields: partitionFields,
		latestID:        latestID,
		addr:            fmt.Sprintf(":%d", port),
		log:             log,
	}
}

func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/snapshots/latest", s.handleSnapshotLatest)
	r.Get("/snapshots/{id}", s.handleSnapshotByID)
	r.Get("/scan", s.handleScan)
	r.Get("/scan/rows", s.handleScanRows)
	return r
}

// Start binds the listener, begins serving in the background, and returns
// once the listener is up; a failure to bind is returned. Serve errors after
// Shutdown was called are not reported.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("adminapi: listen %s: %w", s.addr, err)
	}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("admin http server error", "error", err)
		}
	}()
	s.log.Info("admin http server started", "addr", s.addr)
	return nil
}

// Shutdown gracefully stops the server, bounded by defaultShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("adminapi: shutdown: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("adminapi: encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, newErrorResponse(err.Error()))
}
