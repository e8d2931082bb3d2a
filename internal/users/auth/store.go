// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for signup and login.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given (normalized) email.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound if no account uses the email
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a new account. ID and timestamps are assigned by the store.

		Returns:
		  - error: apperr.Conflict if the email is taken, storage failures otherwise
	*/
	Create(context context.Context, user *User) error
}
