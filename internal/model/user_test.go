// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestUserRoleHelpers(t *testing.T) {
	tests := []struct {
		name           string
		role           Role
		wantAuthor     bool
		wantSubscriber bool
	}{
		{"author", RoleAuthor, true, false},
		{"subscriber", RoleSubscriber, false, true},
		{"unset", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAuthor(); got != tt.wantAuthor {
				t.Errorf("IsAuthor() = %v, want %v", got, tt.wantAuthor)
			}
			if got := u.IsSubscriber(); got != tt.wantSubscriber {
				t.Errorf("IsSubscriber() = %v, want %v", got, tt.wantSubscriber)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"subscriber", RoleSubscriber, false},
		{"AUTHOR", RoleAuthor, false},
		{" author ", RoleAuthor, false},
		{"1", RoleSubscriber, false},
		{"2", RoleAuthor, false},
		{"3", 0, true},
		{"admin", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
