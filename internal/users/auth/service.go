// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/sec"
)

// Client-facing messages.
const (
	MsgUserCreated        = "User created successfully"
	MsgLoginSuccess       = "Login successful"
	MsgEmailExists        = "User with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
)

// # Contracts & Types

// TokenProvider signs access tokens. [*sec.TokenService] satisfies it.
type TokenProvider interface {
	GenerateAccessToken(userID, email string, timeToLive time.Duration) (string, error)
}

// Service implements signup and login.
type Service struct {
	users    UserRepository
	tokens   TokenProvider
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService constructs a new auth [Service].
func NewService(users UserRepository, tokens TokenProvider, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

// Session is the outcome of a successful signup or login.
type Session struct {
	User  *User
	Token string
}

// # Registration Flow

// SignupInput holds the data required to create an account. Validation
// happens in the HTTP layer; the service normalizes.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

/*
Signup creates an account and signs a token for it.

Returns:
  - *Session: The new account and its token
  - error: apperr.Conflict if the email is registered, storage errors otherwise
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*Session, error) {
	email := NormalizeEmail(input.Email)

	_, err := service.users.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict(MsgEmailExists)
	}
	if !isNotFound(err) {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := &User{
		Name:         NormalizeName(input.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_created", slog.String("user_id", user.ID))
	return service.issue(user)
}

// # Authentication Flow

/*
Login verifies an email/password pair. Unknown emails and wrong passwords
produce the same 401 so accounts cannot be enumerated.
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	user, err := service.users.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	return service.issue(user)
}

func (service *Service) issue(user *User) (*Session, error) {
	token, err := service.tokens.GenerateAccessToken(user.ID, user.Email, service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func isNotFound(err error) bool {
	var appError *apperr.AppError
	return errors.As(err, &appError) && appError.HTTPStatus == http.StatusNotFound
}
