// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/epaper/internal/platform/request"
	"github.com/taibuivan/epaper/internal/platform/respond"
	"github.com/taibuivan/epaper/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the signup and login endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the auth endpoints, normally under /api/v1/auth.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
}

// # Request & Response Payloads

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// # Handlers

/*
POST /api/v1/auth/signup.

Request:
  - name: string (optional, at least 2 characters)
  - email: string
  - password: string (8+ characters, a letter and a number)

Response:
  - 201: sessionResponse
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email)
	if !v.HasErrors() {
		v.Email(FieldEmail, NormalizeEmail(input.Email))
	}
	v.Required(FieldPassword, input.Password)
	if input.Password != "" {
		v.Password(FieldPassword, input.Password, MinPasswordLength)
	}
	if name := NormalizeName(input.Name); name != "" {
		v.MinLen(FieldName, name, MinNameLength)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Signup(request.Context(), SignupInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResponse{Message: MsgUserCreated, User: session.User, Token: session.Token})
}

/*
POST /api/v1/auth/login.

Response:
  - 200: sessionResponse
  - 400: VALIDATION_ERROR
  - 401: UNAUTHORIZED: Invalid email or password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email)
	if !v.HasErrors() {
		v.Email(FieldEmail, NormalizeEmail(input.Email))
	}
	v.Required(FieldPassword, input.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{Message: MsgLoginSuccess, User: session.User, Token: session.Token})
}
