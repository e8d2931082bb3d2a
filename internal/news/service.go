// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"time"
)

// # Service Layer

// Service answers reader queries over committed publications.
type Service struct {
	repo     Repository
	location *time.Location
	now      func() time.Time
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *Service) { service.now = now }
}

// NewService constructs a [Service]. location decides which calendar day
// "today" is; nil means UTC.
func NewService(repo Repository, location *time.Location, opts ...ServiceOption) *Service {
	if location == nil {
		location = time.UTC
	}
	service := &Service{repo: repo, location: location, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
Today returns the newest publication for the current date in the
publication timezone.

Returns:
  - *Publication: Today's edition
  - error: apperr.NotFound if today's paper has not been uploaded yet
*/
func (service *Service) Today(context context.Context) (*Publication, error) {
	return service.repo.FindLatestByDate(context, service.Date())
}

// Date returns the current calendar date in the publication timezone.
func (service *Service) Date() time.Time {
	now := service.now().In(service.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ByDate returns the newest publication of the given date.
func (service *Service) ByDate(context context.Context, date time.Time) (*Publication, error) {
	return service.repo.FindLatestByDate(context, date)
}

// Get returns a publication by ID.
func (service *Service) Get(context context.Context, id string) (*Publication, error) {
	return service.repo.FindByID(context, id)
}

// Archive returns one page of publications, newest first, and the total count.
func (service *Service) Archive(context context.Context, limit, offset int) ([]*Publication, int, error) {
	return service.repo.List(context, limit, offset)
}
