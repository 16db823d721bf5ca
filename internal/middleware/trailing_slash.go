// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StripTrailingSlash routes /path/ exactly like /path. The request is
// rewritten in place instead of redirected, so clients that send a body with
// PUT or POST do not lose it. Excludes root path "/".
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())

		path := r.URL.Path
		if rctx != nil && rctx.RoutePath != "" {
			path = rctx.RoutePath
		}

		if len(path) > 1 && strings.HasSuffix(path, "/") {
			trimmed := strings.TrimRight(path, "/")
			if trimmed == "" {
				trimmed = "/"
			}
			if rctx != nil {
				rctx.RoutePath = trimmed
			} else {
				r.URL.Path = trimmed
			}
		}
		next.ServeHTTP(w, r)
	})
}
