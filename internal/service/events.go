// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the application's use cases: user registration and
// management, subscriptions and article publishing. Every operation checks
// the caller against the policy package before touching storage.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/store"
)

// EventService writes audit entries to the event log.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// Record stores an info-level audit event. Failures are logged and otherwise
// ignored so auditing never fails the operation being audited.
func (s *EventService) Record(ctx context.Context, category, message string, actor *model.User, metadata map[string]any) {
	s.record(ctx, model.EventLevelInfo, category, message, actor, metadata)
}

func (s *EventService) record(ctx context.Context, level, category, message string, actor *model.User, metadata map[string]any) {
	var userID sql.NullInt64
	if actor != nil {
		userID = sql.NullInt64{Int64: actor.ID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	_, err := s.queries.CreateEvent(context.WithoutCancel(ctx), store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    userID,
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to record event", "category", category, "message", message, "error", err)
	}
}
