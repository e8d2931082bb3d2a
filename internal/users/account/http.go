// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/epaper/internal/platform/middleware"
	requestutil "github.com/taibuivan/epaper/internal/platform/request"
	"github.com/taibuivan/epaper/internal/platform/respond"
	"github.com/taibuivan/epaper/internal/platform/sec"
	"github.com/taibuivan/epaper/internal/users/auth"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes attaches the profile endpoints, normally under
// /api/v1/protected. All of them require a bearer token.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)

		protected.Get("/profile", handler.getProfile)
		protected.Put("/profile", handler.updateProfile)
		protected.Get("/protected", handler.echoClaims)
	})
}

type profileResponse struct {
	Message string     `json:"message,omitempty"`
	User    *auth.User `json:"user"`
}

type claimsResponse struct {
	Message string          `json:"message"`
	User    *sec.AuthClaims `json:"user"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

/*
GET /api/v1/protected/profile.

Response:
  - 200: profileResponse
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{User: user})
}

/*
PUT /api/v1/protected/profile.

Request:
  - name: string (at least 2 characters after trimming)

Response:
  - 200: profileResponse
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{Message: MsgProfileUpdated, User: user})
}

// echoClaims handles GET /api/v1/protected/protected and returns the verified claims.
func (handler *Handler) echoClaims(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, claimsResponse{Message: MsgProtectedRoute, User: claims})
}
