// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"time"
)

// Credential is the stored authentication record for one user, keyed by
// email. Email is matched case-sensitively as stored; no normalization is
// performed.
type Credential struct {
	ID             int64
	UserID         int64
	Email          string
	PasswordHash   []byte
	PasswordSalt   []byte
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	CreatedAt      time.Time
}

// IsLocked reports whether the account is currently locked. An expired lock
// is reconciled lazily: the counters are cleared as a side effect and false
// is returned. Callers persist the record on the same access path, so the
// cleared state reaches the store without a background sweeper.
func (c *Credential) IsLocked(now time.Time) bool {
	if c.LockedUntil == nil {
		return false
	}
	if now.After(*c.LockedUntil) {
		c.ResetLockout()
		return false
	}
	return true
}

// RecordFailure increments the failure counter and sets the lockout
// timestamp once the threshold is reached.
func (c *Credential) RecordFailure(now time.Time) {
	c.FailedAttempts++
	c.LockedUntil = ComputeLockoutTime(c.FailedAttempts, now)
}

// RecordSuccess clears the failure state and stamps the last login time.
func (c *Credential) RecordSuccess(now time.Time) {
	c.ResetLockout()
	c.LastLoginAt = &now
}

// ResetLockout clears the failure counter and lockout timestamp.
func (c *Credential) ResetLockout() {
	c.FailedAttempts = 0
	c.LockedUntil = nil
}

// CredentialRepository manages credential persistence. Implementations must
// provide per-record atomicity for Update so concurrent failed attempts on
// the same record cannot both miss the lockout threshold.
type CredentialRepository interface {
	// Create stores a new credential record.
	Create(ctx context.Context, cred *Credential) error

	// GetByEmail retrieves a credential by email (case-sensitive).
	GetByEmail(ctx context.Context, email string) (*Credential, error)

	// GetByUserID retrieves the credential owned by a user.
	GetByUserID(ctx context.Context, userID int64) (*Credential, error)

	// Exists reports whether a credential record exists for the email.
	Exists(ctx context.Context, email string) (bool, error)

	// Update persists the credential's password and lockout state.
	Update(ctx context.Context, cred *Credential) error

	// DeleteByUserID removes the credential owned by a user.
	DeleteByUserID(ctx context.Context, userID int64) error
}
