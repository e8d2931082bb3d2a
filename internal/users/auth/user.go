// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration and credential login.

Accounts are identified by email. A successful signup or login returns a
bearer token whose claims carry the account id, which is later recorded as
the uploader of every ingested edition.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// # Rules

const (
	// MinNameLength is the shortest accepted display name, in characters.
	MinNameLength = 2
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
)

// NormalizeName trims a display name and converts it to Unicode NFC, so a
// name typed with combining marks is stored and measured like its
// precomposed form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
