// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pressroom/internal/auth"
)

// RoleSubscriber is the persisted value of the subscriber role.
const RoleSubscriber int64 = 1

// AdminSeed describes the administrator account to ensure.
type AdminSeed struct {
	Email    string
	Password string
	Username string
}

// SeedAdmin makes sure an administrator with the given email exists.
// An existing account is promoted and keeps its password; a new one is
// created with the subscriber role. It reports whether a user was created.
func SeedAdmin(ctx context.Context, db *sql.DB, seed AdminSeed) (User, bool, error) {
	queries := New(db)
	now := time.Now().UTC()

	existing, err := queries.GetUserByEmail(ctx, seed.Email)
	if err == nil {
		if !existing.IsAdmin {
			if err := queries.SetUserAdmin(ctx, SetUserAdminParams{IsAdmin: true, UpdatedAt: now, ID: existing.ID}); err != nil {
				return User{}, false, fmt.Errorf("promoting user: %w", err)
			}
			existing.IsAdmin = true
			slog.Info("promoted existing user to admin", "user_id", existing.ID, "email", existing.Email)
		}
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, false, fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return User{}, false, fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        seed.Email,
		Username:     seed.Username,
		PasswordHash: passwordHash,
		Role:         RoleSubscriber,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, false, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "user_id", user.ID, "email", user.Email)
	return user, true, nil
}
