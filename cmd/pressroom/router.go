// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/cache"
	"github.com/olegiv/pressroom/internal/config"
	"github.com/olegiv/pressroom/internal/handler"
	"github.com/olegiv/pressroom/internal/handler/api"
	"github.com/olegiv/pressroom/internal/metrics"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/version"
)

// routerDeps carries the collaborators of the public router. Nil limiter,
// metrics, verifier and login protection disable those features.
type routerDeps struct {
	cfg      *config.Config
	db       *sql.DB
	dataDir  string
	logger   *slog.Logger
	cache    cache.Cacher
	verifier *auth.Verifier
	lp       *middleware.LoginProtection
	limiter  *middleware.GlobalRateLimiter
	metrics  *metrics.Recorder
	version  version.Info
}

// newRouter builds the public HTTP router. RequestLogger wraps everything so
// panics recovered into 500s and rate limited requests are still logged.
func newRouter(d routerDeps) chi.Router {
	logger := d.logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.cfg.IsDevelopment())))
	if d.limiter != nil {
		r.Use(d.limiter.Middleware())
	}
	r.Use(middleware.Timeout(d.cfg.RequestTimeout))
	if d.metrics != nil {
		r.Use(d.metrics.Middleware)
	}
	r.Use(middleware.NewBasicAuth(d.db, d.verifier, d.lp).Middleware)

	health := handler.NewHealthHandler(d.db, d.dataDir, d.version).WithCache(d.cache)
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	api.NewHandler(d.db, logger, d.verifier).RegisterRoutes(r)

	r.Get("/docs", api.NewDocsHandler(r).ServeDocs)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		api.WriteNotFound(w, req)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		api.WriteError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}

// newDiagRouter serves operational endpoints on the diagnostics listener.
func newDiagRouter(rec *metrics.Recorder, health *handler.HealthHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", rec.Handler())
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	return r
}
