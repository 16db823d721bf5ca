// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pressroom/internal/config"
	"github.com/olegiv/pressroom/internal/handler"
	"github.com/olegiv/pressroom/internal/metrics"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/testutil"
	"github.com/olegiv/pressroom/internal/version"
)

func testConfig() *config.Config {
	return &config.Config{Env: config.EnvDevelopment, RequestTimeout: 5 * time.Second}
}

func newTestRouter(t *testing.T, mutate func(d *routerDeps)) chi.Router {
	t.Helper()
	d := routerDeps{
		cfg:     testConfig(),
		db:      testutil.TestMemoryDB(t),
		logger:  testutil.TestLoggerSilent(),
		version: version.Info{Version: "v0.0.1"},
	}
	if mutate != nil {
		mutate(&d)
	}
	return newRouter(d)
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/health/", "/health/live", "/health/ready"} {
		rr := serve(r, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"), path)
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"), path)
	}
}

func TestRouter_TrailingSlashOptional(t *testing.T) {
	var userID int64
	r := newTestRouter(t, func(d *routerDeps) {
		userID = testutil.CreateUser(t, d.db, "author@example.com", int64(model.RoleAuthor), false).ID
	})

	for _, path := range []string{"/users", "/users/", "/articles", "/articles/"} {
		rr := serve(r, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := serve(r, http.MethodGet, "/users/"+itoa(userID)+"/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "author@example.com")
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rr.Body.String(), `"not_found"`)

	rr = serve(r, http.MethodPost, "/users/1")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Body.String(), `"method_not_allowed"`)
}

func TestRouter_BadCredentials(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/articles/", nil)
	req.SetBasicAuth("nobody@example.com", "wrong-pass1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, func(d *routerDeps) {
		d.limiter = middleware.NewGlobalRateLimiter(0.001, 1)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/articles").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/articles").Code)
}

func TestRouter_MetricsOnDiagnosticsListener(t *testing.T) {
	rec, err := metrics.New(serviceName)
	require.NoError(t, err)

	var diag chi.Router
	r := newTestRouter(t, func(d *routerDeps) {
		d.metrics = rec
		diag = newDiagRouter(rec, handler.NewHealthHandler(d.db, "", d.version))
	})

	serve(r, http.MethodGet, "/articles/42/")

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/metrics").Code,
		"metrics are not exposed on the public listener")

	rr := serve(diag, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/articles/{id}"`)
	assert.Contains(t, rr.Body.String(), `status="404"`)

	assert.Equal(t, http.StatusOK, serve(diag, http.MethodGet, "/health/ready").Code)
}

func TestRouter_Docs(t *testing.T) {
	r := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/docs?format=md")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/users/subscribe/{id}")
}

func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "pressroom dev")
}

func TestRootCommand_Routes(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"routes"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "/articles/{id}")
	assert.Contains(t, out.String(), "/users/unsubscribe/{id}")
}

func TestRootCommand_CreateAdminRequiresFlags(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"create-admin", "--email", "admin@example.com"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
