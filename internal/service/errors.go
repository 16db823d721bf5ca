// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/olegiv/pressroom/internal/policy"
)

// Errors returned by the user and article services. Handlers map them to
// HTTP status codes.
var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	ErrPermissionDenied       = errors.New("you do not have permission to perform this action")
	ErrNotFound               = errors.New("not found")
)

// nonFieldKey holds validation messages that are not tied to one field.
const nonFieldKey = "non_field_errors"

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates validation messages. The first message for a
// field wins.
type fieldErrors map[string]string

func (fe fieldErrors) add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

func (fe fieldErrors) has(field string) bool {
	_, exists := fe[field]
	return exists
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(fe)}
}

// decisionError converts a policy decision into a service error.
func decisionError(d policy.Decision) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.Unauthenticated:
		return ErrAuthenticationRequired
	case policy.Hidden:
		return ErrNotFound
	default:
		return ErrPermissionDenied
	}
}
