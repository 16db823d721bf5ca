// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/pressroom/internal/auth"
)

// Environments accepted in PRESSROOM_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DiagnosticsOff disables the diagnostics listener when used as PRESSROOM_DIAG_ADDR.
const DiagnosticsOff = "off"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"PRESSROOM_DB_PATH" envDefault:"./data/pressroom.db"`
	ServerHost string `env:"PRESSROOM_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"PRESSROOM_SERVER_PORT" envDefault:"8080"`
	DiagAddr   string `env:"PRESSROOM_DIAG_ADDR" envDefault:":9090"` // Metrics listener, "off" disables
	Env        string `env:"PRESSROOM_ENV" envDefault:"development"`
	LogLevel   string `env:"PRESSROOM_LOG_LEVEL" envDefault:"info"`

	RequestTimeout time.Duration `env:"PRESSROOM_REQUEST_TIMEOUT" envDefault:"30s"`
	EventRetention time.Duration `env:"PRESSROOM_EVENT_RETENTION" envDefault:"720h"` // 0 keeps events forever

	// Credential verification cache
	RedisURL     string        `env:"PRESSROOM_REDIS_URL"`                            // Optional Redis URL for a shared cache
	AuthCacheTTL time.Duration `env:"PRESSROOM_AUTH_CACHE_TTL" envDefault:"5m"`       // 0 disables remembering checks
	CachePrefix  string        `env:"PRESSROOM_CACHE_PREFIX" envDefault:"pressroom:"` // Redis key prefix
	CacheMaxSize int           `env:"PRESSROOM_CACHE_MAX_SIZE" envDefault:"10000"`    // Max memory cache entries

	// Abuse protection
	RateLimit       float64       `env:"PRESSROOM_RATE_LIMIT" envDefault:"100"` // Requests per second per IP
	RateBurst       int           `env:"PRESSROOM_RATE_BURST" envDefault:"200"`
	MaxFailedLogins int           `env:"PRESSROOM_MAX_FAILED_LOGINS" envDefault:"5"`
	Lockout         time.Duration `env:"PRESSROOM_LOCKOUT" envDefault:"15m"` // Doubles with each lockout

	// Optional administrator ensured at startup
	AdminEmail    string `env:"PRESSROOM_ADMIN_EMAIL"`
	AdminPassword string `env:"PRESSROOM_ADMIN_PASSWORD"`
	AdminUsername string `env:"PRESSROOM_ADMIN_USERNAME"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// DiagnosticsEnabled reports whether the metrics listener should start.
func (c Config) DiagnosticsEnabled() bool {
	return c.DiagAddr != "" && !strings.EqualFold(c.DiagAddr, DiagnosticsOff)
}

// SeedAdmin reports whether an administrator should be ensured at startup.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != ""
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel converts debug, info, warn or error to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the administrator seed.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PRESSROOM_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("PRESSROOM_LOG_LEVEL: %w", err))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("PRESSROOM_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.RequestTimeout < 0 || c.AuthCacheTTL < 0 || c.Lockout < 0 || c.EventRetention < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("PRESSROOM_RATE_LIMIT and PRESSROOM_RATE_BURST must be positive"))
	}
	if c.MaxFailedLogins < 1 {
		errs = append(errs, errors.New("PRESSROOM_MAX_FAILED_LOGINS must be at least 1"))
	}

	switch {
	case c.AdminEmail == "" && c.AdminPassword != "":
		errs = append(errs, errors.New("PRESSROOM_ADMIN_PASSWORD is set without PRESSROOM_ADMIN_EMAIL"))
	case c.AdminEmail != "" && c.AdminPassword == "":
		errs = append(errs, errors.New("PRESSROOM_ADMIN_EMAIL is set without PRESSROOM_ADMIN_PASSWORD"))
	case c.AdminPassword != "":
		if problems := auth.ValidatePassword(c.AdminPassword); len(problems) > 0 {
			errs = append(errs, fmt.Errorf("PRESSROOM_ADMIN_PASSWORD is too weak: %s", strings.Join(problems, " ")))
		}
	}

	return errors.Join(errs...)
}
