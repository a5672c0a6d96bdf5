// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ops

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/platform/constants"
	"github.com/forumvault/archiver/internal/platform/middleware"
)

// NewServer's middleware chain omits rate limiting and CORS/auth: this
// surface has no browser-facing routes and is reached only by an
// orchestrator or an internal dashboard.

// Server wraps the chi router and the [http.Server] for the ops surface.
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// NewServer builds the ops HTTP surface: /health, /ready, /stats. No other
// routes exist here — this process has no browser-facing API.
func NewServer(addr string, log *slog.Logger, deps Dependencies, jobs *archivejob.Service, pool PoolOccupancy) *Server {
	rte := chi.NewRouter()

	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(chimw.CleanPath)

	liveness, readiness := NewHealthHandlers(deps, log)
	rte.Get("/health", liveness)
	rte.Get("/ready", readiness)
	rte.Get("/stats", NewStatsHandler(jobs, pool))

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe starts the ops HTTP server. It blocks until the server is
// closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("ops_server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
