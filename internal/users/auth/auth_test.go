// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/sec"
	"github.com/taibuivan/epaper/internal/users/auth"
	"github.com/taibuivan/epaper/pkg/uuid"
)

// # Fakes

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*auth.User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return apperr.Conflict(auth.MsgEmailExists)
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.byEmail[user.Email] = &copied
	return nil
}

type failingUsers struct{ err error }

func (f failingUsers) FindByEmail(context.Context, string) (*auth.User, error) { return nil, f.err }
func (f failingUsers) Create(context.Context, *auth.User) error { return f.err }

func newService(t *testing.T, users auth.UserRepository) (*auth.Service, *sec.TokenService) {
	t.Helper()
	tokens, err := sec.NewTokenService("test-secret", "epaper.test")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(users, tokens, time.Hour, logger), tokens
}

// # Service

func TestSignup_NormalizesAndIssuesToken(t *testing.T) {
	users := newMemoryUsers()
	service, tokens := newService(t, users)

	session, err := service.Signup(context.Background(), auth.SignupInput{
		Name:     "  Ana  ",
		Email:    "  Ana@Example.COM ",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.Equal(t, "Ana", session.User.Name)
	assert.NotEqual(t, "secret123", session.User.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret123", session.User.PasswordHash))

	claims, err := tokens.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	users := newMemoryUsers()
	service, _ := newService(t, users)
	input := auth.SignupInput{Email: "dup@example.com", Password: "secret123"}

	_, err := service.Signup(context.Background(), input)
	require.NoError(t, err)

	input.Email = "DUP@example.com"
	_, err = service.Signup(context.Background(), input)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
	assert.Equal(t, auth.MsgEmailExists, appError.Message)
}

func TestSignup_StorageFailurePropagates(t *testing.T) {
	boom := errors.New("connection reset")
	service, _ := newService(t, failingUsers{err: boom})

	_, err := service.Signup(context.Background(), auth.SignupInput{Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, boom)
}

func TestLogin(t *testing.T) {
	users := newMemoryUsers()
	service, _ := newService(t, users)
	_, err := service.Signup(context.Background(), auth.SignupInput{Email: "reader@example.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := service.Login(context.Background(), " Reader@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", session.User.Email)
		assert.NotEmpty(t, session.Token)
	})

	for name, creds := range map[string][2]string{
		"wrong password": {"reader@example.com", "secret124"},
		"unknown email":  {"nobody@example.com", "secret123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.Login(context.Background(), creds[0], creds[1])
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
			assert.Equal(t, auth.MsgInvalidCredentials, appError.Message)
		})
	}
}

func TestNormalizeName_ComposesCombiningMarks(t *testing.T) {
	assert.Equal(t, "Chlo\u00e9", auth.NormalizeName(" Chloe\u0301 "))
}

// # HTTP

type envelope struct {
	Data struct {
		Message string    `json:"message"`
		User    auth.User `json:"user"`
		Token   string    `json:"token"`
	} `json:"data"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details"`
}

func post(t *testing.T, router http.Handler, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload)))

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env), recorder.Body.String())
	return recorder, env
}

func newRouter(t *testing.T) http.Handler {
	service, _ := newService(t, newMemoryUsers())
	router := chi.NewRouter()
	router.Route("/api/v1/auth", auth.NewHandler(service).RegisterRoutes)
	return router
}

func TestHandler_SignupThenLogin(t *testing.T) {
	router := newRouter(t)

	recorder, env := post(t, router, "/api/v1/auth/signup", map[string]string{
		"name": "Editor", "email": "editor@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.Equal(t, auth.MsgUserCreated, env.Data.Message)
	assert.Equal(t, "Editor", env.Data.User.Name)
	assert.NotEmpty(t, env.Data.Token)
	assert.NotContains(t, recorder.Body.String(), "$2a$")

	recorder, env = post(t, router, "/api/v1/auth/login", map[string]string{
		"email": "editor@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, auth.MsgLoginSuccess, env.Data.Message)
	assert.NotEmpty(t, env.Data.Token)

	recorder, env = post(t, router, "/api/v1/auth/signup", map[string]string{
		"email": "editor@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, auth.MsgEmailExists, env.Error)
}

func TestHandler_SignupValidation(t *testing.T) {
	router := newRouter(t)

	cases := map[string]struct {
		body  map[string]string
		field string
	}{
		"bad email":          {map[string]string{"email": "not-an-email", "password": "secret123"}, auth.FieldEmail},
		"short password":     {map[string]string{"email": "a@example.com", "password": "abc1"}, auth.FieldPassword},
		"password no digit":  {map[string]string{"email": "a@example.com", "password": "abcdefgh"}, auth.FieldPassword},
		"password bad chars": {map[string]string{"email": "a@example.com", "password": "abcd1234^"}, auth.FieldPassword},
		"short name":         {map[string]string{"name": " x ", "email": "a@example.com", "password": "secret123"}, auth.FieldName},
		"missing password":   {map[string]string{"email": "a@example.com"}, auth.FieldPassword},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			recorder, env := post(t, router, "/api/v1/auth/signup", tc.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "VALIDATION_ERROR", env.Code)
			require.Len(t, env.Details, 1)
			assert.Equal(t, tc.field, env.Details[0].Field)
		})
	}
}

func TestHandler_LoginRejectsBadJSON(t *testing.T) {
	router := newRouter(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
