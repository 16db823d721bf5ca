// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/store"
)

// UserFromStore converts a stored row to the domain user.
func UserFromStore(u store.User) model.User {
	return model.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         model.Role(u.Role),
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ArticleFromStore converts a stored row to the domain article.
func ArticleFromStore(a store.Article) model.Article {
	return model.Article{
		ID:        a.ID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Slug:      a.Slug,
		Text:      a.Text,
		Public:    a.Public,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Page selects a window of a listing.
type Page struct {
	Limit  int64
	Offset int64
}
