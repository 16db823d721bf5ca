// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom/internal/middleware"
	"github.com/olegiv/pressroom/internal/model"
	"github.com/olegiv/pressroom/internal/store"
	"github.com/olegiv/pressroom/internal/testutil"
)

// apiFixture is a router wired like the server, over an in-memory database
// seeded with an administrator, two authors and a subscriber.
type apiFixture struct {
	t      *testing.T
	db     *sql.DB
	router chi.Router

	admin      store.User
	author     store.User
	other      store.User
	subscriber store.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	f := &apiFixture{t: t, db: db}
	f.admin = testutil.CreateUser(t, db, "admin@example.com", int64(model.RoleSubscriber), true)
	f.author = testutil.CreateUser(t, db, "author@example.com", int64(model.RoleAuthor), false)
	f.other = testutil.CreateUser(t, db, "other@example.com", int64(model.RoleAuthor), false)
	f.subscriber = testutil.CreateUser(t, db, "reader@example.com", int64(model.RoleSubscriber), false)

	r := chi.NewRouter()
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.NewBasicAuth(db, nil, nil).Middleware)
	NewHandler(db, testutil.TestLoggerSilent(), nil).RegisterRoutes(r)
	f.router = r
	return f
}

// anonymous marks a request without credentials.
const anonymous = ""

// do sends a request authenticated as email (with testutil.TestPassword)
// unless email is anonymous. body may be a string of raw JSON or a value to
// marshal.
func (f *apiFixture) do(method, path, email string, body any) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			f.t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != anonymous {
		req.SetBasicAuth(email, testutil.TestPassword)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d (body: %s)", expected, w.Code, w.Body.String())
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code '%s', got %s", expectedCode, resp.Error.Code)
	}
	return resp
}

// envelope mirrors Response with a typed payload.
type envelope[T any] struct {
	Data T     `json:"data"`
	Meta *Meta `json:"meta"`
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response: %v (body: %s)", err, w.Body.String())
	}
	return env
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
