// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/store"
	"github.com/olegiv/pressroom/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), 10)
	require.NoError(t, err)
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(l *slog.Logger)
		wantLevel string
		wantCount int
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed", "host", "localhost") }, model.EventLevelError, 1},
		{"warn", func(l *slog.Logger) { l.Warn("slow query detected", "duration_ms", 5000) }, model.EventLevelWarning, 1},
		{"info skipped", func(l *slog.Logger) { l.Info("server started") }, "", 0},
		{"debug skipped", func(l *slog.Logger) { l.Debug("details") }, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestMemoryDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			require.Len(t, events, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantLevel, events[0].Level)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("not stored")
	logger.Error("stored")

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.Equal(t, "stored", events[0].Message)
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		message string
		attrs   []any
		want    string
	}{
		{"anything", []any{"category", "custom"}, "custom"},
		{"failed credential check", nil, model.EventCategoryAuth},
		{"permission denied", nil, model.EventCategoryAuth},
		{"subscribed twice", nil, model.EventCategorySubscription},
		{"article render failed", nil, model.EventCategoryArticle},
		{"user lookup failed", nil, model.EventCategoryUser},
		{"cache unavailable", nil, model.EventCategoryCache},
		{"disk full", nil, model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			db := testutil.TestMemoryDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Warn(tt.message, tt.attrs...)

			events := listEvents(t, db)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Category)
		})
	}
}

func TestEventLogHandler_MetadataAndUser(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "author@example.com", int64(model.RoleAuthor), false)

	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("request_id", "req-1", "user_id", user.ID).
		WithGroup("http")
	logger.Warn("permission denied", "path", `/articles/"1"`)

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.True(t, events[0].UserID.Valid)
	assert.Equal(t, user.ID, events[0].UserID.Int64)

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(events[0].Metadata), &meta))
	assert.Equal(t, "req-1", meta["request_id"])
	assert.Equal(t, `/articles/"1"`, meta["http.path"])
	assert.NotContains(t, meta, "user_id")
}

func TestEventLogHandler_UnknownUserStillLogged(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Error("request failed", "user_id", int64(424242))

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.False(t, events[0].UserID.Valid)
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("bare", "category", "system")

	events := listEvents(t, db)
	require.Len(t, events, 1)
	assert.Equal(t, "{}", events[0].Metadata)
}
