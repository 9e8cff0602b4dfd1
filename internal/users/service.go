// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package users provides user profile management on top of the auth domain.
package users

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// Service provides user CRUD operations. Credential records follow the
// owning user through the store's cascading delete.
type Service struct {
	users  auth.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a user management service.
func NewService(users auth.UserRepository) (*Service, error) {
	return NewServiceWithLogger(users, slog.Default())
}

// NewServiceWithLogger creates a user management service with an explicit logger.
func NewServiceWithLogger(users auth.UserRepository, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:  users,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*auth.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// List retrieves all users; with activeOnly set, only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*auth.User, error) {
	return s.users.List(ctx, activeOnly)
}

// Update replaces a user's mutable profile fields.
func (s *Service) Update(ctx context.Context, id int64, firstName, lastName, gender string) (*auth.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.UpdateInfo(firstName, lastName, gender, s.now())
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Activate marks a user as active.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, true)
}

// Deactivate marks a user as inactive; subsequent logins are rejected.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	if active {
		user.Activate(now)
	} else {
		user.Deactivate(now)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user active flag changed", "user_id", id, "active", active)
	return nil
}

// Delete removes a user and, through the cascading foreign key, the
// credential record owned by it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
