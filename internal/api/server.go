// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/search"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/config"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/constants"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/metrics"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/middleware"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 only when every dependency answers.
	Readiness http.HandlerFunc

	// Metrics serves /metrics and instruments every request.
	Metrics *metrics.Metrics

	// Catalog serves calibers and the ranked hierarchy.
	Catalog *catalog.Handler

	// Boxes serves polymorphic box attachments and the integrity report.
	Boxes *box.Handler

	// Sources serves the global source index and per-record links.
	Sources *source.Handler

	// Rollups serves hierarchical counts.
	Rollups *rollup.Handler

	// Search resolves external display ids.
	Search *search.Handler
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

A nil verifier disables authentication: mutating and admin routes are then
open, which is only meant for local development.
*/
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(h.Metrics.Middleware)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	requireEditor, requireAdmin := middleware.Passthrough, middleware.Passthrough
	if verifier != nil {
		r.Use(middleware.Authenticate(verifier))
		requireEditor = middleware.RequireRole(sec.RoleEditor)
		requireAdmin = middleware.RequireRole(sec.RoleAdmin)
	} else {
		log.Warn("authentication_disabled", slog.String("reason", "no JWT public key configured"))
	}

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/calibers", func(calibers chi.Router) {
			h.Catalog.RegisterCaliberRoutes(calibers)

			calibers.Route("/{"+catalog.ParamCaliber+"}", func(caliber chi.Router) {
				h.Catalog.RegisterRoutes(caliber, requireEditor)
				h.Boxes.RegisterRoutes(caliber, requireEditor)
				h.Sources.RegisterLinkRoutes(caliber, requireEditor)
				h.Rollups.RegisterRoutes(caliber)
				h.Search.RegisterRoutes(caliber)
			})
		})

		api.Route("/sources", func(sources chi.Router) {
			h.Sources.RegisterRoutes(sources, requireEditor)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdmin)
			h.Boxes.RegisterAdminRoutes(admin)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
