// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrMissingParam is returned when a required URL parameter is empty.
var ErrMissingParam = errors.New("missing URL parameter")

// CalculateTotalPages returns the number of pages needed for totalItems.
// An empty list still has one page.
func CalculateTotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 1
	}
	return (totalItems + perPage - 1) / perPage
}

// MaxPage caps the page number so row offsets cannot overflow.
const MaxPage = 1_000_000

// ParsePageParam returns the 1-based "page" query parameter, defaulting to 1
// and clamped to MaxPage.
func ParsePageParam(r *http.Request) int {
	return min(ParseIntParam(r, "page", 1, 1, 0), MaxPage)
}

// ParsePerPageParam returns the "per_page" query parameter. Values outside
// 1..maxVal fall back to defaultVal.
func ParsePerPageParam(r *http.Request, defaultVal, maxVal int) int {
	return ParseIntParam(r, "per_page", defaultVal, 1, maxVal)
}

// ParseIntParam parses an integer query parameter. Missing, malformed or
// out-of-range values yield defaultVal. A zero maxVal disables the upper bound.
func ParseIntParam(r *http.Request, name string, defaultVal, minVal, maxVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal || (maxVal > 0 && v > maxVal) {
		return defaultVal
	}
	return v
}

// ParseIDParam parses the "id" URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseURLParamInt64(r, "id")
}

// ParseURLParamInt64 parses a named chi URL parameter as int64.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, ErrMissingParam
	}
	return strconv.ParseInt(raw, 10, 64)
}
