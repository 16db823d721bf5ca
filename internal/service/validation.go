// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/model"
)

// Field limits.
const (
	MaxEmailLength    = 254
	MaxUsernameLength = 150
)

const msgRequired = "This field is required."

// usernamePattern allows letters, digits and @ . + - _
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// NormalizeEmail trims surrounding space and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(errs fieldErrors, email string) {
	switch {
	case email == "":
		errs.add("email", msgRequired)
	case len(email) > MaxEmailLength:
		errs.add("email", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxEmailLength))
	case !isEmailShaped(email):
		errs.add("email", "Enter a valid email address.")
	}
}

// isEmailShaped accepts a bare addr-spec whose domain contains a dot.
func isEmailShaped(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validateUsername(errs fieldErrors, username string) {
	if username == "" {
		return
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		errs.add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxUsernameLength))
		return
	}
	if !usernamePattern.MatchString(username) {
		errs.add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
}

func validatePassword(errs fieldErrors, password string) {
	if password == "" {
		errs.add("password", msgRequired)
		return
	}
	if problems := auth.ValidatePassword(password); len(problems) > 0 {
		errs.add("password", strings.Join(problems, " "))
	}
}

func validateRole(errs fieldErrors, raw string) model.Role {
	role, err := model.ParseRole(raw)
	if err != nil {
		errs.add("role", fmt.Sprintf("%q is not a valid choice.", raw))
		return 0
	}
	return role
}

func validateTitle(errs fieldErrors, title string) {
	switch {
	case strings.TrimSpace(title) == "":
		errs.add("title", msgRequired)
	case utf8.RuneCountInString(title) > model.ArticleTitleMaxLength:
		errs.add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", model.ArticleTitleMaxLength))
	}
}

func validateText(errs fieldErrors, text string) {
	if strings.TrimSpace(text) == "" {
		errs.add("text", msgRequired)
	}
}

// uniqueIDs drops duplicates while keeping the first occurrence order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
