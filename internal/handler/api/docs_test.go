// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom/internal/testutil"
)

func newDocsRouter(t *testing.T) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(testutil.TestMemoryDB(t), testutil.TestLoggerSilent(), nil).RegisterRoutes(r)
	return r
}

func TestRoutesMarkdown(t *testing.T) {
	md := RoutesMarkdown(newDocsRouter(t))

	for _, want := range []string{
		DocsIntro,
		"/users/subscribe/{id}",
		"/users/unsubscribe/{id}",
		"/articles/{id}",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("route docs missing %q", want)
		}
	}
}

func TestServeDocs(t *testing.T) {
	docs := NewDocsHandler(newDocsRouter(t))

	tests := []struct {
		name        string
		query       string
		contentType string
		contains    string
	}{
		{"html", "", "text/html; charset=utf-8", "<html>"},
		{"markdown", "?format=md", "text/markdown; charset=utf-8", "/articles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/docs"+tt.query, nil)
			w := httptest.NewRecorder()
			docs.ServeDocs(w, req)

			assertStatusCode(t, w, http.StatusOK)
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}
