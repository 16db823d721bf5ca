// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Article title limits.
const (
	ArticleTitleMaxLength = 500
)

// Article is a piece of content owned by an author.
type Article struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Text      string    `json:"text"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
