// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/users/auth"
)

// Service implements profile reads and updates.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new account [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetProfile returns the account behind the given id.
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.repo.FindByID(context, userID)
}

/*
UpdateProfile replaces the display name.

The name is trimmed and NFC-normalized first; fewer than [auth.MinNameLength]
characters afterwards is a validation error.
*/
func (service *Service) UpdateProfile(context context.Context, userID, name string) (*auth.User, error) {
	name = auth.NormalizeName(name)
	if utf8.RuneCountInString(name) < auth.MinNameLength {
		return nil, apperr.ValidationError(MsgNameTooShort,
			apperr.FieldError{Field: auth.FieldName, Message: MsgNameTooShort})
	}

	user, err := service.repo.UpdateName(context, userID, name)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "profile_updated", slog.String("user_id", userID))
	return user, nil
}
