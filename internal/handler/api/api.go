// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for users, subscriptions and
// articles.
package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/handler"
	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/service"
)

// Pagination defaults for list endpoints.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	users    *service.UserService
	articles *service.ArticleService
	logger   *slog.Logger
}

// NewHandler creates a new API handler. verifier may be nil when credential
// checks are not cached.
func NewHandler(db *sql.DB, logger *slog.Logger, verifier *auth.Verifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		users:    service.NewUserService(db, verifier),
		articles: service.NewArticleService(db),
		logger:   logger,
	}
}

// RegisterRoutes mounts the API on r. Routes are declared without a
// trailing slash; middleware.StripTrailingSlash makes it optional.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Get("/users/subscribe/{id}", h.Subscribe)
	r.Get("/users/unsubscribe/{id}", h.Unsubscribe)
	r.Get("/users/{id}", h.GetUser)
	r.Put("/users/{id}", h.UpdateUser)
	r.Patch("/users/{id}", h.PatchUser)
	r.Delete("/users/{id}", h.DeleteUser)

	r.Get("/articles", h.ListArticles)
	r.Post("/articles", h.CreateArticle)
	r.Get("/articles/{id}", h.GetArticle)
	r.Put("/articles/{id}", h.UpdateArticle)
	r.Patch("/articles/{id}", h.PatchArticle)
	r.Delete("/articles/{id}", h.DeleteArticle)
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// DetailResponse is the body of subscribe and unsubscribe actions.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// WriteSuccess writes a 200 response wrapping data and meta.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data any, meta *Meta) {
	WriteJSON(w, r, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, r *http.Request, data any) {
	WriteJSON(w, r, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, r, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteValidationError writes a 400 response with per-field messages.
func WriteValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	WriteError(w, r, http.StatusBadRequest, "validation_error", "Validation failed", fields)
}

// WriteUnauthorized writes a 401 response with a Basic challenge.
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", middleware.BasicChallenge)
	WriteError(w, r, http.StatusUnauthorized, "not_authenticated", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusForbidden, "permission_denied", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, "not_found", "Not found.", nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps a service error to its HTTP response.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, r, verr.Fields)
	case errors.Is(err, service.ErrAuthenticationRequired):
		WriteUnauthorized(w, r, "Authentication credentials were not provided.")
	case errors.Is(err, service.ErrPermissionDenied):
		h.logger.Warn("permission denied",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", actorID(middleware.GetUser(r)),
		)
		WriteForbidden(w, r, "You do not have permission to perform this action.")
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, r)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteInternalError(w, r, "Internal server error")
	}
}

// bind decodes the request body into v. It reports false after writing a
// 400 response.
func bind(w http.ResponseWriter, r *http.Request, v render.Binder) bool {
	if err := render.Bind(r, v); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			WriteValidationError(w, r, verr.Fields)
			return false
		}
		WriteBadRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

// requireID parses the id URL parameter. It reports false after writing a
// 400 response.
func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, r, "Invalid id")
		return 0, false
	}
	return id, true
}

// parsePage reads page and per_page from the query string.
func parsePage(r *http.Request) (service.Page, int, int) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, DefaultPerPage, MaxPerPage)
	return service.Page{
		Limit:  int64(perPage),
		Offset: int64(page-1) * int64(perPage),
	}, page, perPage
}

func listMeta(total int64, page, perPage int) *Meta {
	return &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   handler.CalculateTotalPages(int(total), perPage),
	}
}

func actorID(u *model.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
