// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/pressroom/internal/markup"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/policy"
	"github.com/olegiv/pressroom/internal/store"
	"github.com/olegiv/pressroom/internal/util"
)

const (
	msgInvalidAuthor     = "Invalid article author."
	msgAuthorAdminOnly   = "Only admin can change article author."
	msgAuthorDoesntExist = "Invalid pk - object does not exist."
)

// ArticleView is an article with its text rendered to HTML.
type ArticleView struct {
	model.Article
	HTML string
}

// CreateArticleInput is the payload of a new article. A nil AuthorID means
// the caller; a nil Public means public.
type CreateArticleInput struct {
	AuthorID *int64
	Title    string
	Text     string
	Public   *bool
}

// UpdateArticleInput carries the fields present in an update request.
type UpdateArticleInput struct {
	AuthorID *int64
	Title    *string
	Text     *string
	Public   *bool
}

// ArticleService publishes articles and enforces their visibility.
type ArticleService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB) *ArticleService {
	return &ArticleService{
		db:      db,
		queries: store.New(db),
		events:  NewEventService(db),
	}
}

// List returns the page of articles actor may see, newest first, and the
// total number of visible articles.
func (s *ArticleService) List(ctx context.Context, actor *model.User, page Page) ([]ArticleView, int64, error) {
	if err := decisionError(policy.ArticleCollection(actor, policy.ActionList)); err != nil {
		return nil, 0, err
	}

	var (
		rows  []store.Article
		total int64
		err   error
	)
	scope := policy.ArticleListScope(actor)
	if scope.All {
		rows, err = s.queries.ListArticles(ctx, store.ListArticlesParams{Limit: page.Limit, Offset: page.Offset})
		if err == nil {
			total, err = s.queries.CountArticles(ctx)
		}
	} else {
		rows, err = s.queries.ListVisibleArticles(ctx, store.ListVisibleArticlesParams{
			ViewerID: scope.ViewerID,
			Limit:    page.Limit,
			Offset:   page.Offset,
		})
		if err == nil {
			total, err = s.queries.CountVisibleArticles(ctx, scope.ViewerID)
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}

	views := make([]ArticleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, articleView(ArticleFromStore(row)))
	}
	return views, total, nil
}

// Get returns one article. Articles actor may not see are ErrNotFound.
func (s *ArticleService) Get(ctx context.Context, actor *model.User, id int64) (ArticleView, error) {
	article, err := s.lookup(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	if err := s.authorize(ctx, actor, policy.ActionRetrieve, &article); err != nil {
		return ArticleView{}, err
	}
	return articleView(article), nil
}

// Create publishes a new article.
func (s *ArticleService) Create(ctx context.Context, actor *model.User, in CreateArticleInput) (ArticleView, error) {
	if err := decisionError(policy.ArticleCollection(actor, policy.ActionCreate)); err != nil {
		return ArticleView{}, err
	}

	errs := fieldErrors{}
	authorID := actor.ID
	if in.AuthorID != nil {
		switch {
		case *in.AuthorID == actor.ID:
		case !actor.IsAdmin:
			errs.add("author", msgInvalidAuthor)
		default:
			authorID = *in.AuthorID
			if err := s.checkAuthorExists(ctx, errs, authorID); err != nil {
				return ArticleView{}, err
			}
		}
	}
	validateTitle(errs, in.Title)
	validateText(errs, in.Text)
	if err := errs.err(); err != nil {
		return ArticleView{}, err
	}

	public := true
	if in.Public != nil {
		public = *in.Public
	}

	now := time.Now().UTC()
	row, err := s.queries.CreateArticle(ctx, store.CreateArticleParams{
		AuthorID:  authorID,
		Title:     in.Title,
		Slug:      util.Slugify(in.Title),
		Text:      in.Text,
		Public:    public,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return ArticleView{}, fmt.Errorf("creating article: %w", err)
	}

	s.events.Record(ctx, model.EventCategoryArticle, "article created", actor, map[string]any{
		"article_id": row.ID,
		"public":     row.Public,
	})
	return articleView(ArticleFromStore(row)), nil
}

// Update modifies an article. With partial false, title and text are required.
func (s *ArticleService) Update(ctx context.Context, actor *model.User, id int64, in UpdateArticleInput, partial bool) (ArticleView, error) {
	article, err := s.lookup(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := s.authorize(ctx, actor, action, &article); err != nil {
		return ArticleView{}, err
	}

	errs := fieldErrors{}
	if !partial {
		if in.Title == nil {
			errs.add("title", msgRequired)
		}
		if in.Text == nil {
			errs.add("text", msgRequired)
		}
	}

	if in.AuthorID != nil && *in.AuthorID != article.AuthorID {
		if !actor.IsAdmin {
			errs.add("author", msgAuthorAdminOnly)
		} else {
			if err := s.checkAuthorExists(ctx, errs, *in.AuthorID); err != nil {
				return ArticleView{}, err
			}
			article.AuthorID = *in.AuthorID
		}
	}
	if in.Title != nil {
		validateTitle(errs, *in.Title)
		article.Title = *in.Title
		article.Slug = util.Slugify(*in.Title)
	}
	if in.Text != nil {
		validateText(errs, *in.Text)
		article.Text = *in.Text
	}
	if in.Public != nil {
		article.Public = *in.Public
	}
	if err := errs.err(); err != nil {
		return ArticleView{}, err
	}

	row, err := s.queries.UpdateArticle(ctx, store.UpdateArticleParams{
		AuthorID:  article.AuthorID,
		Title:     article.Title,
		Slug:      article.Slug,
		Text:      article.Text,
		Public:    article.Public,
		UpdatedAt: time.Now().UTC(),
		ID:        article.ID,
	})
	if err != nil {
		return ArticleView{}, fmt.Errorf("updating article: %w", err)
	}

	s.events.Record(ctx, model.EventCategoryArticle, "article updated", actor, map[string]any{"article_id": row.ID})
	return articleView(ArticleFromStore(row)), nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, actor *model.User, id int64) error {
	article, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, policy.ActionDestroy, &article); err != nil {
		return err
	}

	if _, err := s.queries.DeleteArticle(ctx, article.ID); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}

	s.events.Record(ctx, model.EventCategoryArticle, "article deleted", actor, map[string]any{"article_id": article.ID})
	return nil
}

// authorize runs the article policy, looking up the subscription only when
// it can change the outcome.
func (s *ArticleService) authorize(ctx context.Context, actor *model.User, action policy.Action, article *model.Article) error {
	subscribed := false
	if actor != nil && !article.Public && !actor.IsAdmin && actor.ID != article.AuthorID {
		var err error
		subscribed, err = s.queries.IsSubscribed(ctx, store.IsSubscribedParams{
			SubscriberID: actor.ID,
			AuthorID:     article.AuthorID,
		})
		if err != nil {
			return fmt.Errorf("checking subscription: %w", err)
		}
	}
	return decisionError(policy.ArticleObject(actor, action, article, subscribed))
}

func (s *ArticleService) lookup(ctx context.Context, id int64) (model.Article, error) {
	row, err := s.queries.GetArticleByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("loading article %d: %w", id, err)
	}
	return ArticleFromStore(row), nil
}

func (s *ArticleService) checkAuthorExists(ctx context.Context, errs fieldErrors, authorID int64) error {
	_, err := s.queries.GetUserByID(ctx, authorID)
	if errors.Is(err, sql.ErrNoRows) {
		errs.add("author", msgAuthorDoesntExist)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading author %d: %w", authorID, err)
	}
	return nil
}

func articleView(a model.Article) ArticleView {
	return ArticleView{Article: a, HTML: markup.MustHTML(a.Text)}
}
