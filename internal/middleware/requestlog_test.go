// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/testutil"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles?page=2", nil))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/articles")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "request_id=")
	assert.NotContains(t, out, "user_id=")
}

func TestRequestLoggerServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestRequestLoggerRecordsAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "reader@example.com", int64(model.RoleSubscriber), false)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RequestLogger(logger)(NewBasicAuth(db, nil, nil).Middleware(ok))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.SetBasicAuth("reader@example.com", testutil.TestPassword)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "user_id="+strconv.FormatInt(user.ID, 10))
}
