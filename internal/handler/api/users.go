// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/service"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	IsAdmin       bool       `json:"is_admin"`
	Articles      []int64    `json:"articles"`
	Subscribers   []int64    `json:"subscribers"`
	Subscriptions []int64    `json:"subscriptions"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserRequest is the body of POST, PUT and PATCH on users. Role accepts
// either the role name or its number.
type UserRequest struct {
	Email       *string         `json:"email"`
	Username    *string         `json:"username"`
	Password    *string         `json:"password"`
	RawRole     json.RawMessage `json:"role"`
	Subscribers *[]int64        `json:"subscribers"`

	role *string
}

// Bind implements render.Binder. The role is passed on as text and only
// validated where it is honored.
func (u *UserRequest) Bind(_ *http.Request) error {
	if u.RawRole != nil {
		role := roleText(u.RawRole)
		u.role = &role
	}
	return nil
}

// roleText unquotes JSON strings and keeps any other value as written.
func roleText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (u *UserRequest) createInput() service.CreateUserInput {
	return service.CreateUserInput{
		Email:       deref(u.Email),
		Username:    deref(u.Username),
		Password:    deref(u.Password),
		Role:        u.role,
		Subscribers: u.Subscribers,
	}
}

func (u *UserRequest) updateInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		Email:       u.Email,
		Username:    u.Username,
		Password:    u.Password,
		Role:        u.role,
		Subscribers: u.Subscribers,
	}
}

func userToResponse(v service.UserView) UserResponse {
	return UserResponse{
		ID:            v.ID,
		Username:      v.Username,
		Email:         v.Email,
		Role:          v.Role.String(),
		IsAdmin:       v.IsAdmin,
		Articles:      nonNil(v.Articles),
		Subscribers:   nonNil(v.Subscribers),
		Subscriptions: nonNil(v.Subscriptions),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// ListUsers handles GET /users/
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageNum, perPage := parsePage(r)

	views, total, err := h.users.List(r.Context(), middleware.GetUser(r), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, userToResponse(v))
	}
	WriteSuccess(w, r, resp, listMeta(total, pageNum, perPage))
}

// CreateUser handles POST /users/
// Anonymous callers register as subscribers; administrators may set role
// and subscribers.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !bind(w, r, &req) {
		return
	}

	view, err := h.users.Create(r.Context(), middleware.GetUser(r), req.createInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, r, userToResponse(view))
}

// GetUser handles GET /users/{id}/
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	view, err := h.users.Get(r.Context(), middleware.GetUser(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, userToResponse(view), nil)
}

// UpdateUser handles PUT /users/{id}/
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, false)
}

// PatchUser handles PATCH /users/{id}/
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, true)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req UserRequest
	if !bind(w, r, &req) {
		return
	}

	view, err := h.users.Update(r.Context(), middleware.GetUser(r), id, req.updateInput(), partial)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, userToResponse(view), nil)
}

// DeleteUser handles DELETE /users/{id}/
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w, r)
}

// Subscribe handles GET /users/subscribe/{id}/
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.users.Subscribe(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, DetailResponse{Detail: "Subscription success."}, nil)
}

// Unsubscribe handles GET /users/unsubscribe/{id}/
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.users.Unsubscribe(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, DetailResponse{Detail: "Unsubscription success."}, nil)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
