// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/pressroom.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/pressroom.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want INFO", cfg.SlogLevel())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.EventRetention != 30*24*time.Hour {
		t.Errorf("EventRetention = %v, want 720h", cfg.EventRetention)
	}
	if cfg.AuthCacheTTL != 5*time.Minute {
		t.Errorf("AuthCacheTTL = %v, want 5m", cfg.AuthCacheTTL)
	}
	if cfg.RateLimit != 100 || cfg.RateBurst != 200 {
		t.Errorf("rate limit = %v/%d, want 100/200", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.MaxFailedLogins != 5 || cfg.Lockout != 15*time.Minute {
		t.Errorf("lockout = %d/%v, want 5/15m", cfg.MaxFailedLogins, cfg.Lockout)
	}
	if !cfg.DiagnosticsEnabled() {
		t.Error("diagnostics should be enabled by default")
	}
	if cfg.UseRedisCache() || cfg.SeedAdmin() {
		t.Error("redis and admin seeding should be off by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PRESSROOM_DB_PATH", "/custom/path.db")
	t.Setenv("PRESSROOM_SERVER_HOST", "0.0.0.0")
	t.Setenv("PRESSROOM_SERVER_PORT", "9000")
	t.Setenv("PRESSROOM_ENV", "production")
	t.Setenv("PRESSROOM_LOG_LEVEL", "debug")
	t.Setenv("PRESSROOM_REQUEST_TIMEOUT", "5s")
	t.Setenv("PRESSROOM_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PRESSROOM_DIAG_ADDR", "off")
	t.Setenv("PRESSROOM_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("PRESSROOM_ADMIN_PASSWORD", "s3cret-pass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerAddr() != "0.0.0.0:9000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be false in production")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want DEBUG", cfg.SlogLevel())
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() should be true")
	}
	if cfg.DiagnosticsEnabled() {
		t.Error("DiagnosticsEnabled() should be false")
	}
	if !cfg.SeedAdmin() {
		t.Error("SeedAdmin() should be true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port too high", map[string]string{"PRESSROOM_SERVER_PORT": "70000"}, "PRESSROOM_SERVER_PORT"},
		{"port not a number", map[string]string{"PRESSROOM_SERVER_PORT": "http"}, "parsing config"},
		{"unknown log level", map[string]string{"PRESSROOM_LOG_LEVEL": "verbose"}, "PRESSROOM_LOG_LEVEL"},
		{"unknown env", map[string]string{"PRESSROOM_ENV": "staging"}, "PRESSROOM_ENV"},
		{"bad duration", map[string]string{"PRESSROOM_LOCKOUT": "soon"}, "parsing config"},
		{"negative retention", map[string]string{"PRESSROOM_EVENT_RETENTION": "-1h"}, "negative"},
		{"zero max failed logins", map[string]string{"PRESSROOM_MAX_FAILED_LOGINS": "0"}, "PRESSROOM_MAX_FAILED_LOGINS"},
		{"admin email without password", map[string]string{"PRESSROOM_ADMIN_EMAIL": "a@example.com"}, "PRESSROOM_ADMIN_PASSWORD"},
		{"admin password without email", map[string]string{"PRESSROOM_ADMIN_PASSWORD": "s3cret-pass"}, "PRESSROOM_ADMIN_EMAIL"},
		{"weak admin password", map[string]string{"PRESSROOM_ADMIN_EMAIL": "a@example.com", "PRESSROOM_ADMIN_PASSWORD": "password"}, "too weak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
