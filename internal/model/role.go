// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the kind of account a user holds. The numeric values are persisted.
type Role int64

const (
	RoleSubscriber Role = 1
	RoleAuthor     Role = 2
)

// String returns the lowercase role name used on the wire.
func (r Role) String() string {
	switch r {
	case RoleSubscriber:
		return "subscriber"
	case RoleAuthor:
		return "author"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSubscriber || r == RoleAuthor
}

// ParseRole converts "subscriber", "author", "1" or "2" (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "subscriber":
		return RoleSubscriber, nil
	case "author":
		return RoleAuthor, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && Role(n).Valid() {
		return Role(n), nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
