// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/pressroom/internal/cache"
)

// verifiedKeyPrefix namespaces remembered credential checks inside the cache.
const verifiedKeyPrefix = "auth:verified:"

// Verifier checks Basic credentials against stored hashes and remembers
// successful checks for a short time, so repeated requests do not pay the
// full argon2 cost. Only successes are remembered.
type Verifier struct {
	cache cache.Cacher
	ttl   time.Duration
}

// NewVerifier creates a verifier. A nil cache or non-positive ttl disables
// remembering.
func NewVerifier(c cache.Cacher, ttl time.Duration) *Verifier {
	return &Verifier{cache: c, ttl: ttl}
}

// Verify reports whether password matches encodedHash for email.
func (v *Verifier) Verify(ctx context.Context, email, password, encodedHash string) (bool, error) {
	if !v.enabled() {
		return CheckPassword(password, encodedHash)
	}

	key := verifiedKey(email)
	digest := credentialDigest(email, password, encodedHash)
	cached, err := v.cache.Get(ctx, key)
	switch {
	case err == nil && hmac.Equal(cached, digest):
		return true, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		slog.Warn("credential cache lookup failed", "category", "cache", "error", err)
	}

	ok, err := CheckPassword(password, encodedHash)
	if err != nil || !ok {
		return ok, err
	}

	if err := v.cache.Set(ctx, key, digest, v.ttl); err != nil {
		slog.Warn("credential cache store failed", "category", "cache", "error", err)
	}
	return true, nil
}

// Forget drops the remembered check for email. Call it when the account's
// credentials change or the account is removed.
func (v *Verifier) Forget(ctx context.Context, email string) {
	if !v.enabled() {
		return
	}
	if err := v.cache.Delete(ctx, verifiedKey(email)); err != nil {
		slog.Warn("credential cache delete failed", "category", "cache", "error", err)
	}
}

func (v *Verifier) enabled() bool {
	return v != nil && v.cache != nil && v.ttl > 0
}

// verifiedKey holds one entry per account. The address is hashed so cache
// keys do not expose it.
func verifiedKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return verifiedKeyPrefix + hex.EncodeToString(sum[:])
}

// credentialDigest is keyed by the stored hash, which carries a random salt,
// so a changed password never matches an old entry and the cache alone does
// not allow offline guessing.
func credentialDigest(email, password, encodedHash string) []byte {
	mac := hmac.New(sha256.New, []byte(encodedHash))
	mac.Write([]byte(email))
	mac.Write([]byte{0})
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
