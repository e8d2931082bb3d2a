// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the signed-in user's own profile.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Every endpoint sits behind RequireAuth; the account id always
    comes from the verified token, never from the request body.
*/
package account

import (
	"context"

	"github.com/taibuivan/epaper/internal/users/auth"
)

// Client-facing messages.
const (
	MsgProfileUpdated = "Profile updated successfully"
	MsgProtectedRoute = "This is a protected route"
	MsgNameTooShort   = "Name must be at least 2 characters long"
	resourceUser      = "User"
)

// # Repository Contracts

// Repository defines the persistence contract for profiles.
type Repository interface {
	/*
		FindByID retrieves an account by its id.

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		UpdateName changes the display name and bumps updatedat.

		Returns:
		  - *auth.User: The account after the update
		  - error: apperr.NotFound or storage failures
	*/
	UpdateName(context context.Context, id, name string) (*auth.User, error)
}
