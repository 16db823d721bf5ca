// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/pressroom/internal/cache"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/testutil"
	"github.com/olegiv/pressroom/internal/version"
)

func newTestHealthHandler(t *testing.T) *HealthHandler {
	t.Helper()
	return NewHealthHandler(testutil.TestMemoryDB(t), "", version.Info{Version: "v1.2.3"})
}

func asAdmin(r *http.Request) *http.Request {
	return middleware.WithUser(r, &model.User{ID: 1, Email: "admin@example.com", Role: model.RoleSubscriber, IsAdmin: true})
}

func TestHealthHandler_Health_Public(t *testing.T) {
	handler := newTestHealthHandler(t)

	for _, user := range []*model.User{nil, {ID: 2, Role: model.RoleAuthor}} {
		req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
		if user != nil {
			req = middleware.WithUser(req, user)
		}
		w := httptest.NewRecorder()
		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var raw map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if raw["status"] != StatusHealthy {
			t.Errorf("expected healthy, got %v", raw["status"])
		}
		if len(raw) != 1 {
			t.Errorf("non-admin response should only carry status, got %v", raw)
		}
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	handler := newTestHealthHandler(t)

	req := asAdmin(httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))
	w := httptest.NewRecorder()
	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %q", status.Version)
	}
	if status.Checks["database"].Status != StatusHealthy {
		t.Errorf("expected healthy database, got %+v", status.Checks["database"])
	}
	if _, ok := status.Checks["disk"]; !ok {
		t.Error("expected disk check")
	}
	if status.System == nil || status.System.GoVersion == "" {
		t.Error("expected system info in verbose mode")
	}
}

func TestHealthHandler_Health_UnhealthyDatabase(t *testing.T) {
	handler := newTestHealthHandler(t)
	_ = handler.db.Close()

	req := asAdmin(httptest.NewRequest(http.MethodGet, "/health", nil))
	w := httptest.NewRecorder()
	handler.Health(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %q", status.Status)
	}
	if status.Checks["database"].Message == "" {
		t.Error("expected database error message")
	}
}

func TestHealthHandler_MissingDataDir(t *testing.T) {
	handler := newTestHealthHandler(t)
	handler.dataDir = filepath.Join(t.TempDir(), "nonexistent")

	if got := handler.checkDiskSpace().Status; got != StatusDegraded {
		t.Errorf("checkDiskSpace() = %q, want %q", got, StatusDegraded)
	}

	handler.dataDir = ""
	if got := handler.checkDiskSpace().Status; got != StatusHealthy {
		t.Errorf("checkDiskSpace() without data dir = %q, want %q", got, StatusHealthy)
	}
}

func testHealthEndpoint(t *testing.T, handlerFn http.HandlerFunc, expectedCode int, expectedStatus string) {
	t.Helper()

	w := httptest.NewRecorder()
	handlerFn(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != expectedCode {
		t.Errorf("expected status %d, got %d", expectedCode, w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != expectedStatus {
		t.Errorf("expected status %q, got %q", expectedStatus, resp["status"])
	}
}

func TestHealthHandler_LivenessReadiness(t *testing.T) {
	handler := newTestHealthHandler(t)

	testHealthEndpoint(t, handler.Liveness, http.StatusOK, "alive")
	testHealthEndpoint(t, handler.Readiness, http.StatusOK, "ready")

	_ = handler.db.Close()
	testHealthEndpoint(t, handler.Liveness, http.StatusOK, "alive")
	testHealthEndpoint(t, handler.Readiness, http.StatusServiceUnavailable, "not_ready")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

// remoteCache is a cache.Cacher that answers PING with err.
type remoteCache struct {
	err error
}

func (c *remoteCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }
func (c *remoteCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (c *remoteCache) Delete(context.Context, string) error { return nil }
func (c *remoteCache) Close() error                         { return nil }
func (c *remoteCache) Ping(context.Context) error           { return c.err }

func TestHealthHandler_CacheCheck(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
		wantCache  string
	}{
		{"reachable", nil, StatusHealthy, StatusHealthy},
		{"unreachable", errors.New("connection refused"), StatusDegraded, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHealthHandler(t).WithCache(&remoteCache{err: tt.pingErr})

			w := httptest.NewRecorder()
			handler.Health(w, asAdmin(httptest.NewRequest(http.MethodGet, "/health", nil)))
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var status HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if got := status.Checks["cache"].Status; got != tt.wantCache {
				t.Errorf("cache check = %q, want %q", got, tt.wantCache)
			}

			w = httptest.NewRecorder()
			handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("readiness status = %d, want 200", w.Code)
			}
			var ready map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &ready); err != nil {
				t.Fatalf("failed to decode readiness: %v", err)
			}
			if ready["cache"] != tt.wantCache {
				t.Errorf("readiness cache = %q, want %q", ready["cache"], tt.wantCache)
			}
		})
	}
}

func TestHealthHandler_LocalCacheNotChecked(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	handler := newTestHealthHandler(t).WithCache(mem)

	w := httptest.NewRecorder()
	handler.Health(w, asAdmin(httptest.NewRequest(http.MethodGet, "/health", nil)))

	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := status.Checks["cache"]; ok {
		t.Errorf("process-local cache should not be checked, got %+v", status.Checks)
	}
}
