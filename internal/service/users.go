// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/pressroom/internal/auth"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/policy"
	"github.com/olegiv/pressroom/internal/store"
)

// Validation messages for fields only administrators may set.
const (
	msgRoleAdminOnly        = "Only admin can update user role."
	msgSubscribersAdminOnly = "Only admin can update user subscribers."
	msgEmailTaken           = "A user with that email already exists."
	msgSelfSubscription     = "A user cannot subscribe to themselves."
)

// UserView is a user together with its relations.
type UserView struct {
	model.User
	Articles      []int64
	Subscribers   []int64
	Subscriptions []int64
}

// CreateUserInput is the payload of a registration or admin-created account.
// Role and Subscribers are honored only for administrators.
type CreateUserInput struct {
	Email       string
	Username    string
	Password    string
	Role        *string
	Subscribers *[]int64
}

// UpdateUserInput carries the fields present in an update request.
// A nil pointer means the field was absent.
type UpdateUserInput struct {
	Email       *string
	Username    *string
	Password    *string
	Role        *string
	Subscribers *[]int64
}

// UserService manages accounts and subscriptions.
type UserService struct {
	db       *sql.DB
	queries  *store.Queries
	events   *EventService
	verifier *auth.Verifier
}

// NewUserService creates a new UserService. verifier, when set, has its
// remembered credential checks dropped whenever an account's email or
// password changes or the account is deleted.
func NewUserService(db *sql.DB, verifier *auth.Verifier) *UserService {
	return &UserService{
		db:       db,
		queries:  store.New(db),
		events:   NewEventService(db),
		verifier: verifier,
	}
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, actor *model.User, page Page) ([]UserView, int64, error) {
	if err := decisionError(policy.UserCollection(actor, policy.ActionList)); err != nil {
		return nil, 0, err
	}

	rows, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	views := make([]UserView, 0, len(rows))
	for _, row := range rows {
		view, err := s.viewOf(ctx, UserFromStore(row))
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, actor *model.User, id int64) (UserView, error) {
	target, err := s.lookup(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	if err := decisionError(policy.UserObject(actor, policy.ActionRetrieve, &target, false)); err != nil {
		return UserView{}, err
	}
	return s.viewOf(ctx, target)
}

// Create registers a new account. Anonymous callers always get the
// subscriber role; role and subscribers from them are ignored.
func (s *UserService) Create(ctx context.Context, actor *model.User, in CreateUserInput) (UserView, error) {
	if err := decisionError(policy.UserCollection(actor, policy.ActionCreate)); err != nil {
		return UserView{}, err
	}
	isAdmin := actor != nil && actor.IsAdmin

	errs := fieldErrors{}
	email := NormalizeEmail(in.Email)
	validateEmail(errs, email)
	validateUsername(errs, in.Username)
	validatePassword(errs, in.Password)

	role := model.RoleSubscriber
	var subscribers []int64
	if isAdmin {
		if in.Role != nil {
			role = validateRole(errs, *in.Role)
		}
		if in.Subscribers != nil {
			subscribers = uniqueIDs(*in.Subscribers)
		}
	}

	if !errs.has("email") {
		if err := s.checkEmailFree(ctx, errs, email, 0); err != nil {
			return UserView{}, err
		}
	}
	if err := s.checkSubscribers(ctx, errs, subscribers, 0); err != nil {
		return UserView{}, err
	}
	if err := errs.err(); err != nil {
		return UserView{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	var created store.User
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		created, err = q.CreateUser(ctx, store.CreateUserParams{
			Email:        email,
			Username:     in.Username,
			PasswordHash: hash,
			Role:         int64(role),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return replaceSubscribers(ctx, q, created.ID, subscribers, now)
	})
	if err != nil {
		return UserView{}, err
	}

	s.events.Record(ctx, model.EventCategoryUser, "user created", actor, map[string]any{
		"user_id": created.ID,
		"role":    role.String(),
	})
	return s.viewOf(ctx, UserFromStore(created))
}

// Update modifies the user identified by id. With partial false every
// required field (email, password) must be present.
func (s *UserService) Update(ctx context.Context, actor *model.User, id int64, in UpdateUserInput, partial bool) (UserView, error) {
	target, err := s.lookup(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := decisionError(policy.UserObject(actor, action, &target, false)); err != nil {
		return UserView{}, err
	}
	isAdmin := actor.IsAdmin

	errs := fieldErrors{}
	if !isAdmin {
		if in.Role != nil {
			errs.add("role", msgRoleAdminOnly)
		}
		if in.Subscribers != nil {
			errs.add("subscribers", msgSubscribersAdminOnly)
		}
	}
	if !partial {
		if in.Email == nil {
			errs.add("email", msgRequired)
		}
		if in.Password == nil {
			errs.add("password", msgRequired)
		}
	}

	email := target.Email
	if in.Email != nil {
		email = NormalizeEmail(*in.Email)
		validateEmail(errs, email)
	}
	username := target.Username
	if in.Username != nil {
		username = *in.Username
		validateUsername(errs, username)
	}
	if in.Password != nil {
		validatePassword(errs, *in.Password)
	}

	role := target.Role
	var subscribers []int64
	if isAdmin {
		if in.Role != nil {
			role = validateRole(errs, *in.Role)
		}
		if in.Subscribers != nil {
			subscribers = uniqueIDs(*in.Subscribers)
		}
	}

	if !errs.has("email") && email != target.Email {
		if err := s.checkEmailFree(ctx, errs, email, target.ID); err != nil {
			return UserView{}, err
		}
	}
	if err := s.checkSubscribers(ctx, errs, subscribers, target.ID); err != nil {
		return UserView{}, err
	}
	if err := errs.err(); err != nil {
		return UserView{}, err
	}

	passwordHash := target.PasswordHash
	if in.Password != nil {
		if passwordHash, err = auth.HashPassword(*in.Password); err != nil {
			return UserView{}, fmt.Errorf("hashing password: %w", err)
		}
	}

	now := time.Now().UTC()
	var updated store.User
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		updated, err = q.UpdateUser(ctx, store.UpdateUserParams{
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			Role:         int64(role),
			UpdatedAt:    now,
			ID:           target.ID,
		})
		if err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		if isAdmin && in.Subscribers != nil {
			if err := q.ClearSubscribers(ctx, target.ID); err != nil {
				return fmt.Errorf("clearing subscribers: %w", err)
			}
			return replaceSubscribers(ctx, q, target.ID, subscribers, now)
		}
		return nil
	})
	if err != nil {
		return UserView{}, err
	}

	if in.Password != nil || email != target.Email {
		s.verifier.Forget(ctx, target.Email)
	}
	s.events.Record(ctx, model.EventCategoryUser, "user updated", actor, map[string]any{"user_id": target.ID})
	return s.viewOf(ctx, UserFromStore(updated))
}

// Delete removes the user together with their articles and subscriptions.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id int64) error {
	target, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := decisionError(policy.UserObject(actor, policy.ActionDestroy, &target, false)); err != nil {
		return err
	}

	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteUserSubscriptions(ctx, target.ID); err != nil {
			return fmt.Errorf("deleting subscriptions: %w", err)
		}
		if err := q.DeleteArticlesByAuthor(ctx, target.ID); err != nil {
			return fmt.Errorf("deleting articles: %w", err)
		}
		if _, err := q.DeleteUser(ctx, target.ID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.verifier.Forget(ctx, target.Email)

	// A deleted account can no longer be referenced by its own event.
	recordedBy := actor
	if actor.ID == target.ID {
		recordedBy = nil
	}
	s.events.Record(ctx, model.EventCategoryUser, "user deleted", recordedBy, map[string]any{
		"user_id":  target.ID,
		"actor_id": actor.ID,
	})
	return nil
}

// Subscribe makes actor a subscriber of the author identified by authorID.
// Subscribing twice is denied.
func (s *UserService) Subscribe(ctx context.Context, actor *model.User, authorID int64) error {
	target, subscribed, err := s.subscriptionTarget(ctx, actor, authorID)
	if err != nil {
		return err
	}
	if err := decisionError(policy.UserObject(actor, policy.ActionSubscribe, &target, subscribed)); err != nil {
		return err
	}

	added, err := s.queries.AddSubscription(ctx, store.AddSubscriptionParams{
		SubscriberID: actor.ID,
		AuthorID:     target.ID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("adding subscription: %w", err)
	}
	if added == 0 {
		// Lost a race with a concurrent subscribe.
		return ErrPermissionDenied
	}

	s.events.Record(ctx, model.EventCategorySubscription, "subscribed", actor, map[string]any{"author_id": target.ID})
	return nil
}

// Unsubscribe removes actor from the subscribers of authorID. Unsubscribing
// without a subscription is denied.
func (s *UserService) Unsubscribe(ctx context.Context, actor *model.User, authorID int64) error {
	target, subscribed, err := s.subscriptionTarget(ctx, actor, authorID)
	if err != nil {
		return err
	}
	if err := decisionError(policy.UserObject(actor, policy.ActionUnsubscribe, &target, subscribed)); err != nil {
		return err
	}

	removed, err := s.queries.RemoveSubscription(ctx, store.RemoveSubscriptionParams{
		SubscriberID: actor.ID,
		AuthorID:     target.ID,
	})
	if err != nil {
		return fmt.Errorf("removing subscription: %w", err)
	}
	if removed == 0 {
		// Lost a race with a concurrent unsubscribe.
		return ErrPermissionDenied
	}

	s.events.Record(ctx, model.EventCategorySubscription, "unsubscribed", actor, map[string]any{"author_id": target.ID})
	return nil
}

// CreateAdmin validates credentials and ensures an administrator account.
// It reports whether a new account was created.
func (s *UserService) CreateAdmin(ctx context.Context, email, password, username string) (model.User, bool, error) {
	errs := fieldErrors{}
	email = NormalizeEmail(email)
	validateEmail(errs, email)
	validateUsername(errs, username)
	validatePassword(errs, password)
	if err := errs.err(); err != nil {
		return model.User{}, false, err
	}

	user, created, err := store.SeedAdmin(ctx, s.db, store.AdminSeed{Email: email, Password: password, Username: username})
	if err != nil {
		return model.User{}, false, err
	}
	return UserFromStore(user), created, nil
}

func (s *UserService) subscriptionTarget(ctx context.Context, actor *model.User, authorID int64) (model.User, bool, error) {
	target, err := s.lookup(ctx, authorID)
	if err != nil {
		return model.User{}, false, err
	}
	if actor == nil {
		return target, false, nil
	}
	subscribed, err := s.queries.IsSubscribed(ctx, store.IsSubscribedParams{SubscriberID: actor.ID, AuthorID: target.ID})
	if err != nil {
		return model.User{}, false, fmt.Errorf("checking subscription: %w", err)
	}
	return target, subscribed, nil
}

func (s *UserService) lookup(ctx context.Context, id int64) (model.User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading user %d: %w", id, err)
	}
	return UserFromStore(row), nil
}

func (s *UserService) checkEmailFree(ctx context.Context, errs fieldErrors, email string, excludeID int64) error {
	taken, err := s.queries.EmailExists(ctx, store.EmailExistsParams{Email: email, ExcludeID: excludeID})
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if taken {
		errs.add("email", msgEmailTaken)
	}
	return nil
}

// checkSubscribers verifies that every id names an existing user other than
// targetID.
func (s *UserService) checkSubscribers(ctx context.Context, errs fieldErrors, ids []int64, targetID int64) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if targetID != 0 && id == targetID {
			errs.add("subscribers", msgSelfSubscription)
			return nil
		}
	}
	found, err := s.queries.CountUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking subscribers: %w", err)
	}
	if found != int64(len(ids)) {
		errs.add("subscribers", "Invalid pk - object does not exist.")
	}
	return nil
}

func replaceSubscribers(ctx context.Context, q *store.Queries, authorID int64, subscribers []int64, now time.Time) error {
	for _, subscriberID := range subscribers {
		if _, err := q.AddSubscription(ctx, store.AddSubscriptionParams{
			SubscriberID: subscriberID,
			AuthorID:     authorID,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("adding subscriber %d: %w", subscriberID, err)
		}
	}
	return nil
}

func (s *UserService) viewOf(ctx context.Context, u model.User) (UserView, error) {
	articles, err := s.queries.ListArticleIDsByAuthor(ctx, u.ID)
	if err != nil {
		return UserView{}, fmt.Errorf("loading articles of user %d: %w", u.ID, err)
	}
	subscribers, err := s.queries.ListSubscriberIDs(ctx, u.ID)
	if err != nil {
		return UserView{}, fmt.Errorf("loading subscribers of user %d: %w", u.ID, err)
	}
	subscriptions, err := s.queries.ListSubscriptionIDs(ctx, u.ID)
	if err != nil {
		return UserView{}, fmt.Errorf("loading subscriptions of user %d: %w", u.ID, err)
	}
	return UserView{User: u, Articles: articles, Subscribers: subscribers, Subscriptions: subscriptions}, nil
}
