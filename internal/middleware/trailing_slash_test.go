// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestStripTrailingSlash(t *testing.T) {
	r := chi.NewRouter()
	r.Use(StripTrailingSlash)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("root")) })
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("users")) })
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("user " + chi.URLParam(r, "id")))
	})
	r.Put("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})

	tests := []struct {
		method string
		path   string
		body   string
		want   string
	}{
		{http.MethodGet, "/", "", "root"},
		{http.MethodGet, "/users", "", "users"},
		{http.MethodGet, "/users/", "", "users"},
		{http.MethodGet, "/users/7", "", "user 7"},
		{http.MethodGet, "/users/7/", "", "user 7"},
		{http.MethodGet, "/users/7//", "", "user 7"},
		{http.MethodPut, "/users/7/", `{"email":"a@b.co"}`, `{"email":"a@b.co"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripTrailingSlashWithoutRouter(t *testing.T) {
	var seen string
	handler := StripTrailingSlash(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/3/", nil))

	if seen != "/articles/3" {
		t.Errorf("path = %q, want /articles/3", seen)
	}
}
