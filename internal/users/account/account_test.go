// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/middleware"
	"github.com/taibuivan/epaper/internal/platform/sec"
	"github.com/taibuivan/epaper/internal/users/account"
	"github.com/taibuivan/epaper/internal/users/auth"
)

const (
	knownID   = "0192f1c4-7b1e-7c3a-9d2e-5f6a7b8c9d0e"
	unknownID = "0192f1c4-7b1e-7c3a-9d2e-000000000000"
)

type memoryRepo struct {
	users map[string]*auth.User
}

func (m *memoryRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (m *memoryRepo) UpdateName(_ context.Context, id, name string) (*auth.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	user.Name = name
	user.UpdatedAt = user.UpdatedAt.Add(time.Minute)
	copied := *user
	return &copied, nil
}

func newRepo() *memoryRepo {
	created := time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC)
	return &memoryRepo{users: map[string]*auth.User{
		knownID: {ID: knownID, Name: "Editor", Email: "editor@example.com", CreatedAt: created, UpdatedAt: created},
	}}
}

type tokenStub struct{}

func (tokenStub) VerifyToken(token string) (*sec.AuthClaims, error) {
	switch token {
	case "known":
		return &sec.AuthClaims{UserID: knownID, Email: "editor@example.com"}, nil
	case "ghost":
		return &sec.AuthClaims{UserID: unknownID, Email: "ghost@example.com"}, nil
	}
	return nil, errors.New("invalid token")
}

func newRouter(repo account.Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := account.NewHandler(account.NewService(repo, logger))

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokenStub{}))
	router.Route("/api/v1/protected", handler.RegisterRoutes)
	return router
}

type envelope struct {
	Data struct {
		Message string          `json:"message"`
		User    json.RawMessage `json:"user"`
	} `json:"data"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env), recorder.Body.String())
	return recorder, env
}

func TestProfile_RequiresToken(t *testing.T) {
	router := newRouter(newRepo())

	recorder, env := do(t, router, http.MethodGet, "/api/v1/protected/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, middleware.MsgTokenRequired, env.Error)

	recorder, env = do(t, router, http.MethodGet, "/api/v1/protected/profile", "forged", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, middleware.MsgTokenInvalid, env.Error)
}

func TestGetProfile(t *testing.T) {
	router := newRouter(newRepo())

	recorder, env := do(t, router, http.MethodGet, "/api/v1/protected/profile", "known", nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var user auth.User
	require.NoError(t, json.Unmarshal(env.Data.User, &user))
	assert.Equal(t, knownID, user.ID)
	assert.Equal(t, "editor@example.com", user.Email)

	recorder, env = do(t, router, http.MethodGet, "/api/v1/protected/profile", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "User not found", env.Error)
}

func TestUpdateProfile(t *testing.T) {
	repo := newRepo()
	router := newRouter(repo)

	recorder, env := do(t, router, http.MethodPut, "/api/v1/protected/profile", "known", map[string]string{"name": "  Night Desk "})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, account.MsgProfileUpdated, env.Data.Message)
	assert.Equal(t, "Night Desk", repo.users[knownID].Name)

	recorder, env = do(t, router, http.MethodPut, "/api/v1/protected/profile", "known", map[string]string{"name": " a "})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, account.MsgNameTooShort, env.Error)
	assert.Equal(t, "Night Desk", repo.users[knownID].Name)
}

func TestEchoClaims(t *testing.T) {
	router := newRouter(newRepo())

	recorder, env := do(t, router, http.MethodGet, "/api/v1/protected/protected", "known", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, account.MsgProtectedRoute, env.Data.Message)

	var claims sec.AuthClaims
	require.NoError(t, json.Unmarshal(env.Data.User, &claims))
	assert.Equal(t, knownID, claims.UserID)
}
