// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes a cache backend.
type Config struct {
	// RedisURL selects the Redis backend when set.
	RedisURL         string
	Prefix           string
	DefaultTTL       time.Duration
	MaxSize          int
	CleanupInterval  time.Duration
	FallbackToMemory bool
}

// Result describes the cache New produced.
type Result struct {
	Cache      Cacher
	Backend    string
	IsFallback bool
}

// New creates a Redis cache when RedisURL is set, otherwise a memory cache.
// With FallbackToMemory, an unreachable Redis yields a memory cache instead
// of an error.
func New(cfg Config) (Result, error) {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			slog.Info("cache backend ready", "backend", BackendRedis, "url", sanitizeRedisURL(cfg.RedisURL))
			return Result{Cache: rc, Backend: BackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Warn("redis unavailable, falling back to memory cache",
			"category", "cache",
			"url", sanitizeRedisURL(cfg.RedisURL),
			"error", err)
		return Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory, IsFallback: true}, nil
	}

	return Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory}, nil
}

func newMemoryFromConfig(cfg Config) *MemoryCache {
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cleanup,
	})
}

// sanitizeRedisURL hides the password of a Redis URL for logging.
func sanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
