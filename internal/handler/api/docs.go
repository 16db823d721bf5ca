// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"

	"github.com/olegiv/pressroom/internal/markup"
)

// DocsIntro is the introduction printed above the generated route list.
const DocsIntro = "Pressroom REST API. Authenticate with HTTP Basic (email and password). " +
	"Trailing slashes are optional on every route."

// RoutesMarkdown returns the route documentation of r as Markdown.
func RoutesMarkdown(r chi.Router) string {
	return docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
		ProjectPath: "github.com/olegiv/pressroom",
		Intro:       DocsIntro,
	})
}

// DocsHandler serves the generated route documentation.
type DocsHandler struct {
	routes chi.Router

	once     sync.Once
	markdown string
	html     string
	err      error
}

// NewDocsHandler creates a documentation handler for routes. The
// documentation is generated on first request, after all routes exist.
func NewDocsHandler(routes chi.Router) *DocsHandler {
	return &DocsHandler{routes: routes}
}

func (h *DocsHandler) build() {
	h.markdown = RoutesMarkdown(h.routes)
	h.html, h.err = markup.ToHTML(h.markdown)
}

// ServeDocs handles GET /docs. ?format=md returns the raw Markdown.
func (h *DocsHandler) ServeDocs(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.build)

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(h.markdown))
		return
	}
	if h.err != nil {
		WriteInternalError(w, r, "Failed to render documentation")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Pressroom API</title></head><body>\n"))
	_, _ = w.Write([]byte(h.html))
	_, _ = w.Write([]byte("</body></html>\n"))
}
