// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// CredentialRepository implements auth.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	db DB
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(db DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create stores a new credential record.
func (r *CredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO user_credentials (
			user_id, email, password_hash, password_salt,
			failed_attempts, locked_until, last_login_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		cred.UserID,
		cred.Email,
		cred.PasswordHash,
		cred.PasswordSalt,
		cred.FailedAttempts,
		cred.LockedUntil,
		cred.LastLoginAt,
		cred.CreatedAt,
	).Scan(&cred.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("CREDENTIAL_EMAIL_TAKEN").
				Wrap(auth.ErrEmailTaken)
		}
		return oops.Code("CREDENTIAL_CREATE_FAILED").
			With("operation", "insert credential").
			With("user_id", cred.UserID).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves a credential by email (case-sensitive, as stored).
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, password_hash, password_salt,
		       failed_attempts, locked_until, last_login_at, created_at
		FROM user_credentials
		WHERE email = $1
	`, email)

	cred, err := scanCredential(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_BY_EMAIL_FAILED").
			With("operation", "get credential by email").
			Wrap(err)
	}
	return cred, nil
}

// GetByUserID retrieves the credential owned by a user.
func (r *CredentialRepository) GetByUserID(ctx context.Context, userID int64) (*auth.Credential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, password_hash, password_salt,
		       failed_attempts, locked_until, last_login_at, created_at
		FROM user_credentials
		WHERE user_id = $1
	`, userID)

	cred, err := scanCredential(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("user_id", userID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_BY_USER_FAILED").
			With("operation", "get credential by user id").
			With("user_id", userID).
			Wrap(err)
	}
	return cred, nil
}

// Exists reports whether a credential record exists for the email.
func (r *CredentialRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_credentials WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("CREDENTIAL_EXISTS_FAILED").
			With("operation", "check credential exists").
			Wrap(err)
	}
	return exists, nil
}

// Update persists the credential's password and lockout state. The write is
// a single row UPDATE keyed by primary key, which gives the per-record
// atomicity the lockout counters require.
func (r *CredentialRepository) Update(ctx context.Context, cred *auth.Credential) error {
	result, err := r.db.Exec(ctx, `
		UPDATE user_credentials SET
			password_hash = $2,
			password_salt = $3,
			failed_attempts = $4,
			locked_until = $5,
			last_login_at = $6
		WHERE id = $1
	`,
		cred.ID,
		cred.PasswordHash,
		cred.PasswordSalt,
		cred.FailedAttempts,
		cred.LockedUntil,
		cred.LastLoginAt,
	)
	if err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").
			With("operation", "update credential").
			With("id", cred.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CREDENTIAL_NOT_FOUND").
			With("id", cred.ID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUserID removes the credential owned by a user.
func (r *CredentialRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM user_credentials WHERE user_id = $1
	`, userID)
	if err != nil {
		return oops.Code("CREDENTIAL_DELETE_FAILED").
			With("operation", "delete credential").
			With("user_id", userID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CREDENTIAL_NOT_FOUND").
			With("user_id", userID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanCredential scans a single row into a Credential.
// Callers are responsible for handling pgx.ErrNoRows.
func scanCredential(row pgx.Row) (*auth.Credential, error) {
	var cred auth.Credential
	err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.PasswordSalt,
		&cred.FailedAttempts,
		&cred.LockedUntil,
		&cred.LastLoginAt,
		&cred.CreatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("CREDENTIAL_SCAN_FAILED").
			With("operation", "scan credential").
			Wrap(err)
	}
	return &cred, nil
}

// Compile-time interface check.
var _ auth.CredentialRepository = (*CredentialRepository)(nil)
