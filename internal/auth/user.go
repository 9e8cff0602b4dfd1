// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"time"
)

// User represents an application identity. Credential state is kept in a
// separate Credential record referencing the user by ID.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Gender    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// FullName returns the display name used in token claims.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Activate marks the user as active.
func (u *User) Activate(now time.Time) {
	u.Active = true
	u.UpdatedAt = &now
}

// Deactivate marks the user as inactive; login and refresh are rejected
// for inactive users.
func (u *User) Deactivate(now time.Time) {
	u.Active = false
	u.UpdatedAt = &now
}

// UpdateInfo replaces the mutable profile fields.
func (u *User) UpdateInfo(firstName, lastName, gender string, now time.Time) {
	u.FirstName = firstName
	u.LastName = lastName
	u.Gender = gender
	u.UpdatedAt = &now
}

// UserRepository manages user persistence.
type UserRepository interface {
	// CreateWithCredential stores a new user and its credential record as a
	// single transaction. On success both IDs are populated; on failure
	// neither row is persisted. Returns ErrEmailTaken if the credential
	// email is already registered.
	CreateWithCredential(ctx context.Context, user *User, cred *Credential) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves all users; with activeOnly set, only active ones.
	List(ctx context.Context, activeOnly bool) ([]*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user. The credential record is removed by the
	// store's cascading delete.
	Delete(ctx context.Context, id int64) error
}
