// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/cache"
	"github.com/olegiv/pressroom/internal/handler"
	"github.com/olegiv/pressroom/internal/metrics"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/scheduler"
	"github.com/olegiv/pressroom/internal/service"
	"github.com/olegiv/pressroom/internal/version"
)

const shutdownTimeout = 30 * time.Second

func serveCommand(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	info := version.Get()
	slog.Info("starting pressroom", "version", info.String(), "commit", info.GitCommit)

	if cfg.SeedAdmin() {
		users := service.NewUserService(a.db, nil)
		user, created, err := users.CreateAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminUsername)
		if err != nil {
			return fmt.Errorf("ensuring admin user: %w", err)
		}
		slog.Info("admin user ready", "user_id", user.ID, "created", created)
	}

	cacheResult, err := cache.New(cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.AuthCacheTTL,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: cfg.MaxFailedLogins,
		LockoutDuration:   cfg.Lockout,
		AttemptWindow:     cfg.Lockout,
	})
	defer lp.Close()

	rec, err := metrics.New(serviceName)
	if err != nil {
		return err
	}
	rec.ObserveCache(cacheResult.Cache, cacheResult.Backend)

	limiter := middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst)
	dataDir := filepath.Dir(cfg.DBPath)

	router := newRouter(routerDeps{
		cfg:      cfg,
		db:       a.db,
		dataDir:  dataDir,
		logger:   a.logger,
		cache:    cacheResult.Cache,
		verifier: auth.NewVerifier(cacheResult.Cache, cfg.AuthCacheTTL),
		lp:       lp,
		limiter:  limiter,
		metrics:  rec,
		version:  info,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	var diag *http.Server
	if cfg.DiagnosticsEnabled() {
		diag = &http.Server{
			Addr:              cfg.DiagAddr,
			Handler:           newDiagRouter(rec, handler.NewHealthHandler(a.db, dataDir, info).WithCache(cacheResult.Cache)),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("starting diagnostics listener", "addr", cfg.DiagAddr)
			if err := diag.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("diagnostics server error", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sched := scheduler.New(a.db, a.logger, scheduler.Config{
		EventRetention: cfg.EventRetention,
		Pruners:        []scheduler.Pruner{limiter},
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if diag != nil {
		if err := diag.Shutdown(shutdownCtx); err != nil {
			slog.Warn("diagnostics shutdown failed", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
