// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "strings"

// expandSlice replaces the single placeholder inside the /*SLICE:...*/ marker
// with one placeholder per id.
func expandSlice(query string, ids []int64) (string, []interface{}) {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	start := strings.Index(query, "/*SLICE:")
	if start < 0 {
		return query, args
	}
	end := strings.Index(query[start:], "*/?")
	if end < 0 {
		return query, args
	}
	placeholders := strings.Repeat(",?", len(ids))[1:]
	return query[:start] + placeholders + query[start+end+3:], args
}
