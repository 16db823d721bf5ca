// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markup renders article text written in Markdown to sanitized HTML.
package markup

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer uses bluemonday's UGCPolicy, which keeps formatting tags
// and drops scripts, event handlers and unsafe URLs.
var htmlSanitizer = bluemonday.UGCPolicy()

// ToHTML converts Markdown source to sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// MustHTML is ToHTML for callers that prefer escaped text to an error.
func MustHTML(source string) string {
	out, err := ToHTML(source)
	if err != nil {
		return bluemonday.StrictPolicy().Sanitize(source)
	}
	return out
}
