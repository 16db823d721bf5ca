// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication, rate
// limiting and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/service"
	"github.com/olegiv/pressroom/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyUser holds the authenticated *model.User.
	ContextKeyUser ContextKey = "user"
	// contextKeyUserHolder lets RequestLogger see who a request was served for.
	contextKeyUserHolder ContextKey = "user_holder"
)

// BasicChallenge is the WWW-Authenticate value sent with 401 responses.
const BasicChallenge = `Basic realm="api", charset="UTF-8"`

var errInvalidCredentials = errors.New("invalid credentials")

// BasicAuth authenticates requests carrying HTTP Basic credentials
// (email:password). Requests without an Authorization header, or with a
// scheme other than Basic, continue anonymously. Bad credentials always
// yield 401, even on routes open to anonymous callers.
type BasicAuth struct {
	queries  *store.Queries
	verifier *auth.Verifier
	lp       *LoginProtection
}

// NewBasicAuth creates the Basic authentication middleware. lp may be nil to
// disable lockout.
func NewBasicAuth(db *sql.DB, verifier *auth.Verifier, lp *LoginProtection) *BasicAuth {
	return &BasicAuth{
		queries:  store.New(db),
		verifier: verifier,
		lp:       lp,
	}
}

// Middleware returns the authentication middleware.
func (a *BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		scheme, _, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "basic") {
			next.ServeHTTP(w, r)
			return
		}

		email, password, ok := r.BasicAuth()
		if !ok {
			writeUnauthorized(w, "Invalid basic header. Credentials string not properly base64 encoded.", nil)
			return
		}
		email = strings.ToLower(strings.TrimSpace(email))
		ip := getClientIP(r)

		if a.lp != nil {
			if locked, remaining := a.lp.IsAccountLocked(email); locked {
				writeTooManyAttempts(w, remaining)
				return
			}
			if a.lp.IPThrottled(ip) {
				slog.Warn("credential checks throttled", "category", "auth", "ip", ip)
				writeTooManyAttempts(w, time.Minute)
				return
			}
		}

		user, err := a.authenticate(r.Context(), email, password)
		if errors.Is(err, errInvalidCredentials) {
			slog.Warn("failed credential check", "category", "auth", "email", email, "ip", ip)
			var details map[string]string
			if a.lp != nil {
				a.lp.RecordFailedIP(ip)
				if locked, d := a.lp.RecordFailedAttempt(email); locked {
					writeTooManyAttempts(w, d)
					return
				}
				details = map[string]string{
					"remaining_attempts": strconv.Itoa(a.lp.GetRemainingAttempts(email)),
				}
			}
			writeUnauthorized(w, "Invalid email/password.", details)
			return
		}
		if err != nil {
			slog.Error("authentication failed", "error", err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
			return
		}

		if a.lp != nil {
			a.lp.RecordSuccessfulLogin(email)
		}
		if holder, ok := r.Context().Value(contextKeyUserHolder).(*userHolder); ok {
			holder.userID = user.ID
		}
		next.ServeHTTP(w, WithUser(r, user))
	})
}

// authenticate resolves email and password to a user.
func (a *BasicAuth) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	row, err := a.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	ok, err := a.verifier.Verify(ctx, email, password, row.PasswordHash)
	if errors.Is(err, auth.ErrUnsupportedHash) {
		slog.Warn("stored password hash has an unsupported format", "category", "auth", "user_id", row.ID)
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	if auth.NeedsRehash(row.PasswordHash) {
		a.rehash(ctx, row.ID, password)
	}

	user := service.UserFromStore(row)
	return &user, nil
}

// rehash upgrades a legacy hash after a successful check. Failure only
// delays the upgrade to the next request.
func (a *BasicAuth) rehash(ctx context.Context, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := a.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
		ID:           userID,
	}); err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	slog.Info("upgraded legacy password hash", "category", "auth", "user_id", userID)
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(ContextKeyUser).(*model.User)
	return user
}

// WithUser returns a copy of r authenticated as user. Intended for tests and
// internal callers that resolve users themselves.
func WithUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user))
}

type userHolder struct {
	userID int64
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, contextKeyUserHolder, h)
}

func writeUnauthorized(w http.ResponseWriter, message string, details map[string]string) {
	w.Header().Set("WWW-Authenticate", BasicChallenge)
	WriteAPIError(w, http.StatusUnauthorized, "authentication_failed", message, details)
}

func writeTooManyAttempts(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	WriteAPIError(w, http.StatusTooManyRequests, "too_many_attempts",
		"Too many failed attempts. Try again later.", nil)
}
