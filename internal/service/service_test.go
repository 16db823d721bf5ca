// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

// fixture holds a database with one user of each kind.
type fixture struct {
	db         *sql.DB
	users      *UserService
	articles   *ArticleService
	admin      *model.User
	author     *model.User
	otherAuth  *model.User
	subscriber *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	mk := func(email string, role model.Role, admin bool) *model.User {
		u := UserFromStore(testutil.CreateUser(t, db, email, int64(role), admin))
		return &u
	}

	return &fixture{
		db:         db,
		users:      NewUserService(db, nil),
		articles:   NewArticleService(db),
		admin:      mk("admin@example.com", model.RoleSubscriber, true),
		author:     mk("author@example.com", model.RoleAuthor, false),
		otherAuth:  mk("other@example.com", model.RoleAuthor, false),
		subscriber: mk("reader@example.com", model.RoleSubscriber, false),
	}
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, field, "fields: %v", verr.Fields)
}
