// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping: bounding in-memory limiter
// state and expiring old event log entries.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/pressroom/internal/store"
)

// Job schedules.
const (
	PruneSpec = "@every 5m"
	PurgeSpec = "@hourly"
)

// Pruner drops state that is no longer needed.
type Pruner interface {
	Prune()
}

// Config selects the housekeeping jobs.
type Config struct {
	// EventRetention is how long event log entries are kept. Zero keeps
	// them forever.
	EventRetention time.Duration
	Pruners        []Pruner
}

// Scheduler handles periodic housekeeping tasks.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
	cfg    Config
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, cfg Config) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
		cfg:    cfg,
	}
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	if len(s.cfg.Pruners) > 0 {
		if _, err := s.cron.AddFunc(PruneSpec, s.prune); err != nil {
			return fmt.Errorf("scheduling prune: %w", err)
		}
	}
	if s.cfg.EventRetention > 0 {
		_, err := s.cron.AddFunc(PurgeSpec, func() {
			if _, err := s.PurgeEvents(context.Background()); err != nil {
				s.logger.Error("failed to purge events", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling event purge: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) prune() {
	for _, p := range s.cfg.Pruners {
		p.Prune()
	}
}

// PurgeEvents deletes event log entries older than the retention period.
func (s *Scheduler) PurgeEvents(ctx context.Context) (int64, error) {
	if s.cfg.EventRetention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.cfg.EventRetention)
	removed, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	if removed > 0 {
		s.logger.Info("purged old events", "category", "system", "count", removed, "before", cutoff)
	}
	return removed, nil
}
