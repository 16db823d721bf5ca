// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the operational HTTP handlers and request
// parameter helpers shared by the API.
package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/olegiv/pressroom/internal/cache"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/version"
)

// Health check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// minFreeSpace is the free space below which the data directory is degraded.
const minFreeSpace = 100 * 1024 * 1024 // 100MB

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	dataDir   string
	version   version.Info
	cache     cache.Pinger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. dataDir is the directory
// holding the database file.
func NewHealthHandler(db *sql.DB, dataDir string, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		dataDir:   dataDir,
		version:   info,
		startTime: time.Now(),
	}
}

// WithCache adds c to the health and readiness checks when it is backed by
// a remote server. Process-local caches are not checked.
func (h *HealthHandler) WithCache(c cache.Cacher) *HealthHandler {
	if p, ok := c.(cache.Pinger); ok {
		h.cache = p
	}
	return h
}

// HealthStatusPublic is the minimal health response for non-admin callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (administrators only).
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health.
// Returns the bare status to everyone and full details to administrators.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	diskCheck := h.checkDiskSpace()
	cacheCheck, hasCache := h.checkCache(r.Context())

	overallStatus := StatusHealthy
	switch {
	case dbCheck.Status == StatusUnhealthy:
		overallStatus = StatusUnhealthy
	case dbCheck.Status != StatusHealthy || diskCheck.Status != StatusHealthy:
		overallStatus = StatusDegraded
	case hasCache && cacheCheck.Status != StatusHealthy:
		overallStatus = StatusDegraded
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	user := middleware.GetUser(r)
	if user == nil || !user.IsAdmin {
		writeHealthJSON(w, statusCode, HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks: map[string]Check{
			"database": dbCheck,
			"disk":     diskCheck,
		},
	}
	if hasCache {
		status.Checks["cache"] = cacheCheck
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
	}

	writeHealthJSON(w, statusCode, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
// Only the database gates readiness; credential checks work without the cache.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ready"}
	if c, ok := h.checkCache(r.Context()); ok {
		resp["cache"] = c.Status
	}
	if h.checkDatabase(r.Context()).Status != StatusHealthy {
		resp["status"] = "not_ready"
		writeHealthJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeHealthJSON(w, http.StatusOK, resp)
}

func writeHealthJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  StatusUnhealthy,
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  StatusHealthy,
		Message: "Connected",
		Latency: latency.String(),
	}
}

// checkCache pings the shared cache. The second result is false when no
// remote cache is configured.
func (h *HealthHandler) checkCache(ctx context.Context) (Check, bool) {
	if h.cache == nil {
		return Check{}, false
	}
	start := time.Now()
	err := h.cache.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  StatusDegraded,
			Message: err.Error(),
			Latency: latency.String(),
		}, true
	}
	return Check{
		Status:  StatusHealthy,
		Message: "Connected",
		Latency: latency.String(),
	}, true
}

// checkDiskSpace checks available disk space in the data directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if h.dataDir == "" {
		return Check{Status: StatusHealthy, Message: "In-memory database"}
	}
	if _, err := os.Stat(h.dataDir); err != nil {
		return Check{
			Status:  StatusDegraded,
			Message: "Data directory unavailable: " + err.Error(),
		}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.dataDir, &stat); err != nil {
		return Check{
			Status:  StatusDegraded,
			Message: "Failed to check disk space: " + err.Error(),
		}
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	available := formatBytes(availableBytes)

	if availableBytes < minFreeSpace {
		return Check{
			Status:  StatusDegraded,
			Message: "Low disk space: " + available + " available",
		}
	}
	return Check{
		Status:  StatusHealthy,
		Message: available + " available",
	}
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
