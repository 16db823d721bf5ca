// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across the application:
// users, their roles, articles and event log entries.
package model

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAuthor reports whether the user holds the author role.
func (u *User) IsAuthor() bool {
	return u.Role == RoleAuthor
}

// IsSubscriber reports whether the user holds the subscriber role.
func (u *User) IsSubscriber() bool {
	return u.Role == RoleSubscriber
}
