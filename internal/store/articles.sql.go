// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const articleColumns = `id, author_id, title, slug, text, public, created_at, updated_at`

func scanArticle(row interface{ Scan(...interface{}) error }) (Article, error) {
	var i Article
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Slug,
		&i.Text,
		&i.Public,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryArticles(ctx context.Context, query string, args ...interface{}) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Article
	for rows.Next() {
		i, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createArticle = `-- name: CreateArticle :one
INSERT INTO articles (author_id, title, slug, text, public, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + articleColumns

type CreateArticleParams struct {
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Text      string    `json:"text"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, createArticle,
		arg.AuthorID,
		arg.Title,
		arg.Slug,
		arg.Text,
		arg.Public,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanArticle(row)
}

const getArticleByID = `-- name: GetArticleByID :one
SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

func (q *Queries) GetArticleByID(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleByID, id))
}

const listArticles = `-- name: ListArticles :many
SELECT ` + articleColumns + ` FROM articles
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListArticlesParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// ListArticles returns every article regardless of visibility.
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error) {
	return q.queryArticles(ctx, listArticles, arg.Limit, arg.Offset)
}

const countArticles = `-- name: CountArticles :one
SELECT COUNT(*) FROM articles`

func (q *Queries) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countArticles).Scan(&count)
	return count, err
}

const visibleArticlesFilter = `
WHERE public = 1
   OR author_id = ?1
   OR author_id IN (SELECT author_id FROM subscriptions WHERE subscriber_id = ?1)`

const listVisibleArticles = `-- name: ListVisibleArticles :many
SELECT ` + articleColumns + ` FROM articles` + visibleArticlesFilter + `
ORDER BY created_at DESC, id DESC
LIMIT ?2 OFFSET ?3`

type ListVisibleArticlesParams struct {
	ViewerID int64 `json:"viewer_id"`
	Limit    int64 `json:"limit"`
	Offset   int64 `json:"offset"`
}

// ListVisibleArticles returns public articles plus private ones written by
// the viewer or by authors the viewer subscribes to. ViewerID 0 selects
// public articles only.
func (q *Queries) ListVisibleArticles(ctx context.Context, arg ListVisibleArticlesParams) ([]Article, error) {
	return q.queryArticles(ctx, listVisibleArticles, arg.ViewerID, arg.Limit, arg.Offset)
}

const countVisibleArticles = `-- name: CountVisibleArticles :one
SELECT COUNT(*) FROM articles` + visibleArticlesFilter

func (q *Queries) CountVisibleArticles(ctx context.Context, viewerID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVisibleArticles, viewerID).Scan(&count)
	return count, err
}

const listArticleIDsByAuthor = `-- name: ListArticleIDsByAuthor :many
SELECT id FROM articles WHERE author_id = ? ORDER BY id`

func (q *Queries) ListArticleIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	return q.queryIDs(ctx, listArticleIDsByAuthor, authorID)
}

const updateArticle = `-- name: UpdateArticle :one
UPDATE articles
SET author_id = ?, title = ?, slug = ?, text = ?, public = ?, updated_at = ?
WHERE id = ?
RETURNING ` + articleColumns

type UpdateArticleParams struct {
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Text      string    `json:"text"`
	Public    bool      `json:"public"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, updateArticle,
		arg.AuthorID,
		arg.Title,
		arg.Slug,
		arg.Text,
		arg.Public,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanArticle(row)
}

const deleteArticle = `-- name: DeleteArticle :execrows
DELETE FROM articles WHERE id = ?`

func (q *Queries) DeleteArticle(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteArticle, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteArticlesByAuthor = `-- name: DeleteArticlesByAuthor :exec
DELETE FROM articles WHERE author_id = ?`

func (q *Queries) DeleteArticlesByAuthor(ctx context.Context, authorID int64) error {
	_, err := q.db.ExecContext(ctx, deleteArticlesByAuthor, authorID)
	return err
}
