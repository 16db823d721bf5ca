// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy decides who may do what with users and articles.
// Decisions are pure functions of the caller, the action, the target and
// the caller's subscription to the target's author; nothing here touches
// storage.
package policy

import "github.com/olegiv/pressroom/internal/model"

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow permits the action.
	Allow Decision = iota
	// Unauthenticated means the action needs credentials the caller did not send.
	Unauthenticated
	// Denied means the caller is known but not permitted.
	Denied
	// Hidden means the target must be reported as absent.
	Hidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Denied:
		return "denied"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Action names an operation on a collection or an object.
type Action string

const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionSubscribe     Action = "subscribe"
	ActionUnsubscribe   Action = "unsubscribe"
)

func isWrite(action Action) bool {
	return action == ActionUpdate || action == ActionPartialUpdate || action == ActionDestroy
}

// UserCollection authorizes list and create on the user collection.
// A nil actor is an anonymous caller.
func UserCollection(actor *model.User, action Action) Decision {
	switch action {
	case ActionList:
		return Allow
	case ActionCreate:
		// Registration is open to anonymous callers; signed-in users may
		// only create accounts when they are administrators.
		if actor == nil || actor.IsAdmin {
			return Allow
		}
		return Denied
	default:
		return Denied
	}
}

// UserObject authorizes an action on target. subscribed reports whether
// actor already subscribes to target.
func UserObject(actor *model.User, action Action, target *model.User, subscribed bool) Decision {
	if action == ActionRetrieve {
		return Allow
	}
	if actor == nil {
		return Unauthenticated
	}

	switch {
	case isWrite(action):
		if actor.IsAdmin || actor.ID == target.ID {
			return Allow
		}
		return Denied
	case action == ActionSubscribe:
		if actor.IsSubscriber() && target.IsAuthor() && actor.ID != target.ID && !subscribed {
			return Allow
		}
		return Denied
	case action == ActionUnsubscribe:
		if actor.IsSubscriber() && target.IsAuthor() && subscribed {
			return Allow
		}
		return Denied
	default:
		return Denied
	}
}

// ArticleCollection authorizes list and create on the article collection.
func ArticleCollection(actor *model.User, action Action) Decision {
	switch action {
	case ActionList:
		return Allow
	case ActionCreate:
		if actor == nil {
			return Unauthenticated
		}
		if actor.IsAdmin || actor.IsAuthor() {
			return Allow
		}
		return Denied
	default:
		return Denied
	}
}

// CanView reports whether actor may see article. subscribed reports whether
// actor subscribes to the article's author.
func CanView(actor *model.User, article *model.Article, subscribed bool) bool {
	if article.Public {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.IsAdmin || actor.ID == article.AuthorID || subscribed
}

// ArticleObject authorizes an action on article. Articles the actor cannot
// view are Hidden for every action, before any ownership check.
func ArticleObject(actor *model.User, action Action, article *model.Article, subscribed bool) Decision {
	if !CanView(actor, article, subscribed) {
		return Hidden
	}
	if action == ActionRetrieve {
		return Allow
	}
	if actor == nil {
		return Unauthenticated
	}
	if isWrite(action) && (actor.IsAdmin || actor.ID == article.AuthorID) {
		return Allow
	}
	return Denied
}

// ArticleScope describes which articles a list request may return.
type ArticleScope struct {
	// All lifts every visibility filter.
	All bool
	// ViewerID selects public articles plus private ones by the viewer or
	// by authors the viewer subscribes to. Zero means public only.
	ViewerID int64
}

// ArticleListScope returns the listing scope for actor.
func ArticleListScope(actor *model.User) ArticleScope {
	switch {
	case actor == nil:
		return ArticleScope{}
	case actor.IsAdmin:
		return ArticleScope{All: true}
	default:
		return ArticleScope{ViewerID: actor.ID}
	}
}
