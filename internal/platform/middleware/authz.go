// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/constants"
	"github.com/taibuivan/epaper/internal/platform/ctxutil"
	"github.com/taibuivan/epaper/internal/platform/respond"
	"github.com/taibuivan/epaper/internal/platform/sec"
)

// Messages returned to clients by the authentication layer.
const (
	MsgTokenRequired = "Access token required"
	MsgTokenInvalid  = "Invalid or expired token"
)

// TokenVerifier verifies bearer tokens. [*sec.TokenService] satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. No Authorization header: the request proceeds anonymously.
//  2. A header that is not `Bearer <token>`, or a token that fails
//     verification: 403 "Invalid or expired token".
//  3. Otherwise the [*sec.AuthClaims] are injected into the context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				respond.Error(writer, request, apperr.Forbidden(MsgTokenInvalid))
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				respond.Error(writer, request, apperr.Forbidden(MsgTokenInvalid))
				return
			}

			recordPrincipal(request.Context(), claims.UserID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireAuth blocks anonymous requests with 401 "Access token required".
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized(MsgTokenRequired))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Principal holder

type principalKey struct{}

// principal is shared by pointer between [StructuredLogger] and
// [Authenticate] so the access log can report the user id.
type principal struct {
	userID string
}

func withPrincipal(ctx context.Context) (context.Context, *principal) {
	holder := &principal{}
	return context.WithValue(ctx, principalKey{}, holder), holder
}

func recordPrincipal(ctx context.Context, userID string) {
	if holder, ok := ctx.Value(principalKey{}).(*principal); ok {
		holder.userID = userID
	}
}
