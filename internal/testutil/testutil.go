// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a test logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "pressroom-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates a migrated in-memory database on the cgo driver.
// The pool is limited to one connection so every query sees the same database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=1")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testPasswordHash is computed once; argon2 is slow enough to matter in
// tests that create many users.
var (
	testPasswordHash     string
	testPasswordHashErr  error
	testPasswordHashOnce sync.Once
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "s3cret-pass"

// CreateUser inserts a user with TestPassword and returns it.
func CreateUser(t *testing.T, db *sql.DB, email string, role int64, isAdmin bool) store.User {
	t.Helper()

	testPasswordHashOnce.Do(func() {
		testPasswordHash, testPasswordHashErr = auth.HashPassword(TestPassword)
	})
	if testPasswordHashErr != nil {
		t.Fatalf("HashPassword: %v", testPasswordHashErr)
	}

	now := time.Now().UTC()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: testPasswordHash,
		Role:         role,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return user
}

// CreateArticle inserts an article owned by authorID and returns it.
func CreateArticle(t *testing.T, db *sql.DB, authorID int64, title string, public bool) store.Article {
	t.Helper()

	now := time.Now().UTC()
	article, err := store.New(db).CreateArticle(context.Background(), store.CreateArticleParams{
		AuthorID:  authorID,
		Title:     title,
		Text:      "Body of " + title,
		Public:    public,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateArticle(%s): %v", title, err)
	}
	return article
}

// Subscribe records that subscriberID follows authorID.
func Subscribe(t *testing.T, db *sql.DB, subscriberID, authorID int64) {
	t.Helper()

	_, err := store.New(db).AddSubscription(context.Background(), store.AddSubscriptionParams{
		SubscriberID: subscriberID,
		AuthorID:     authorID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AddSubscription(%d -> %d): %v", subscriberID, authorID, err)
	}
}
