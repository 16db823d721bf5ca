// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

func (q *Queries) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addSubscription = `-- name: AddSubscription :execrows
INSERT INTO subscriptions (subscriber_id, author_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT (subscriber_id, author_id) DO NOTHING`

type AddSubscriptionParams struct {
	SubscriberID int64     `json:"subscriber_id"`
	AuthorID     int64     `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddSubscription records the pair and reports how many rows were inserted.
// An existing pair is left untouched and yields 0.
func (q *Queries) AddSubscription(ctx context.Context, arg AddSubscriptionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, addSubscription, arg.SubscriberID, arg.AuthorID, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const removeSubscription = `-- name: RemoveSubscription :execrows
DELETE FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`

type RemoveSubscriptionParams struct {
	SubscriberID int64 `json:"subscriber_id"`
	AuthorID     int64 `json:"author_id"`
}

func (q *Queries) RemoveSubscription(ctx context.Context, arg RemoveSubscriptionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, removeSubscription, arg.SubscriberID, arg.AuthorID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const isSubscribed = `-- name: IsSubscribed :one
SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = ? AND author_id = ?)`

type IsSubscribedParams struct {
	SubscriberID int64 `json:"subscriber_id"`
	AuthorID     int64 `json:"author_id"`
}

func (q *Queries) IsSubscribed(ctx context.Context, arg IsSubscribedParams) (bool, error) {
	var subscribed bool
	err := q.db.QueryRowContext(ctx, isSubscribed, arg.SubscriberID, arg.AuthorID).Scan(&subscribed)
	return subscribed, err
}

const listSubscriberIDs = `-- name: ListSubscriberIDs :many
SELECT subscriber_id FROM subscriptions WHERE author_id = ? ORDER BY subscriber_id`

// ListSubscriberIDs returns the users subscribed to authorID.
func (q *Queries) ListSubscriberIDs(ctx context.Context, authorID int64) ([]int64, error) {
	return q.queryIDs(ctx, listSubscriberIDs, authorID)
}

const listSubscriptionIDs = `-- name: ListSubscriptionIDs :many
SELECT author_id FROM subscriptions WHERE subscriber_id = ? ORDER BY author_id`

// ListSubscriptionIDs returns the authors subscriberID follows.
func (q *Queries) ListSubscriptionIDs(ctx context.Context, subscriberID int64) ([]int64, error) {
	return q.queryIDs(ctx, listSubscriptionIDs, subscriberID)
}

const clearSubscribers = `-- name: ClearSubscribers :exec
DELETE FROM subscriptions WHERE author_id = ?`

func (q *Queries) ClearSubscribers(ctx context.Context, authorID int64) error {
	_, err := q.db.ExecContext(ctx, clearSubscribers, authorID)
	return err
}

const deleteUserSubscriptions = `-- name: DeleteUserSubscriptions :exec
DELETE FROM subscriptions WHERE subscriber_id = ?1 OR author_id = ?1`

// DeleteUserSubscriptions removes every subscription the user takes part in.
func (q *Queries) DeleteUserSubscriptions(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteUserSubscriptions, userID)
	return err
}
