// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/service"
)

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID        int64     `json:"id"`
	Author    int64     `json:"author"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleRequest is the body of POST, PUT and PATCH on articles.
type ArticleRequest struct {
	Author *int64  `json:"author"`
	Title  *string `json:"title"`
	Text   *string `json:"text"`
	Public *bool   `json:"public"`
}

// Bind implements render.Binder.
func (a *ArticleRequest) Bind(_ *http.Request) error {
	if a.Title != nil {
		title := strings.TrimSpace(*a.Title)
		a.Title = &title
	}
	return nil
}

func (a *ArticleRequest) createInput() service.CreateArticleInput {
	return service.CreateArticleInput{
		AuthorID: a.Author,
		Title:    deref(a.Title),
		Text:     deref(a.Text),
		Public:   a.Public,
	}
}

func (a *ArticleRequest) updateInput() service.UpdateArticleInput {
	return service.UpdateArticleInput{
		AuthorID: a.Author,
		Title:    a.Title,
		Text:     a.Text,
		Public:   a.Public,
	}
}

func articleToResponse(v service.ArticleView) ArticleResponse {
	return ArticleResponse{
		ID:        v.ID,
		Author:    v.AuthorID,
		Title:     v.Title,
		Slug:      v.Slug,
		Text:      v.Text,
		HTML:      v.HTML,
		Public:    v.Public,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// ListArticles handles GET /articles/
// Anonymous callers see public articles only.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, pageNum, perPage := parsePage(r)

	views, total, err := h.articles.List(r.Context(), middleware.GetUser(r), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]ArticleResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, articleToResponse(v))
	}
	WriteSuccess(w, r, resp, listMeta(total, pageNum, perPage))
}

// CreateArticle handles POST /articles/
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if !bind(w, r, &req) {
		return
	}

	view, err := h.articles.Create(r.Context(), middleware.GetUser(r), req.createInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, r, articleToResponse(view))
}

// GetArticle handles GET /articles/{id}/
// Private articles the caller may not see are reported as not found.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	view, err := h.articles.Get(r.Context(), middleware.GetUser(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, articleToResponse(view), nil)
}

// UpdateArticle handles PUT /articles/{id}/
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	h.updateArticle(w, r, false)
}

// PatchArticle handles PATCH /articles/{id}/
func (h *Handler) PatchArticle(w http.ResponseWriter, r *http.Request) {
	h.updateArticle(w, r, true)
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req ArticleRequest
	if !bind(w, r, &req) {
		return
	}

	view, err := h.articles.Update(r.Context(), middleware.GetUser(r), id, req.updateInput(), partial)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, articleToResponse(view), nil)
}

// DeleteArticle handles DELETE /articles/{id}/
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w, r)
}
