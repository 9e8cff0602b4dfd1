// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Service orchestrates registration and login over the credential store,
// password hasher, lockout state machine, and token issuer.
type Service struct {
	users  UserRepository
	creds  CredentialRepository
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service with the default logger.
func NewService(users UserRepository, creds CredentialRepository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(users, creds, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, creds CredentialRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if creds == nil {
		return nil, oops.Errorf("credentials repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:  users,
		creds:  creds,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}, nil
}

// WithClock overrides the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RegisterParams carries pre-validated registration input. Input shape
// validation (email format, password length) belongs to the transport layer.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Gender    string
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User         *User
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenPair is the payload of a successful token refresh.
type TokenPair struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

// Register creates a user and its credential record as a single unit.
// Rejections carry CodeEmailTaken or CodePersistenceFailed.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	exists, err := s.creds.Exists(ctx, p.Email)
	if err != nil {
		Registrations.WithLabelValues(StatusError).Inc()
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "check email exists").
			Wrap(err)
	}
	if exists {
		Registrations.WithLabelValues(StatusEmailTaken).Inc()
		return nil, oops.Code(CodeEmailTaken).Errorf("email already registered")
	}

	digest, salt, err := s.hasher.Hash(p.Password)
	if err != nil {
		Registrations.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := s.now()
	user := &User{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Gender:    p.Gender,
		Active:    true,
		CreatedAt: now,
	}
	cred := &Credential{
		Email:        p.Email,
		PasswordHash: digest,
		PasswordSalt: salt,
		CreatedAt:    now,
	}

	// The store creates both rows in one transaction. A concurrent
	// registration racing past the Exists check surfaces here as
	// ErrEmailTaken via the unique index.
	if err := s.users.CreateWithCredential(ctx, user, cred); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			Registrations.WithLabelValues(StatusEmailTaken).Inc()
			return nil, oops.Code(CodeEmailTaken).Errorf("email already registered")
		}
		Registrations.WithLabelValues(StatusError).Inc()
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "create user with credential").
			Wrap(err)
	}

	Registrations.WithLabelValues(StatusSuccess).Inc()
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and issues a token pair.
//
// A missing credential record and a wrong password are reported identically
// as CodeInvalidCredentials so responses cannot be used to enumerate
// registered emails. Lockout and inactive accounts are reported as distinct
// reasons since they require different remediation.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			LoginAttempts.WithLabelValues(StatusInvalidCredentials).Inc()
			return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
		}
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "get credential by email").
			Wrap(err)
	}

	now := s.now()
	if cred.IsLocked(now) {
		LoginAttempts.WithLabelValues(StatusLocked).Inc()
		return nil, oops.Code(CodeAccountLocked).
			With("locked_until", cred.LockedUntil).
			Errorf("account is temporarily locked due to repeated failed attempts")
	}

	if !s.hasher.Verify(password, cred.PasswordHash, cred.PasswordSalt) {
		cred.RecordFailure(now)
		if cred.LockedUntil != nil {
			Lockouts.Inc()
			s.logger.Warn("account locked after repeated failures", "user_id", cred.UserID)
		}
		if err := s.creds.Update(ctx, cred); err != nil {
			LoginAttempts.WithLabelValues(StatusError).Inc()
			return nil, oops.Code(CodePersistenceFailed).
				With("operation", "record failed attempt").
				Wrap(err)
		}
		LoginAttempts.WithLabelValues(StatusInvalidCredentials).Inc()
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	}

	user, err := s.users.GetByID(ctx, cred.UserID)
	if err != nil {
		// A credential without its user is corrupt state, not a login failure.
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "get user for credential").
			With("user_id", cred.UserID).
			Wrap(err)
	}
	if !user.Active {
		LoginAttempts.WithLabelValues(StatusInactive).Inc()
		return nil, oops.Code(CodeAccountInactive).Errorf("account is deactivated")
	}

	cred.RecordSuccess(now)
	if err := s.creds.Update(ctx, cred); err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "record successful login").
			Wrap(err)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate refresh token").
			Wrap(err)
	}

	LoginAttempts.WithLabelValues(StatusSuccess).Inc()
	s.logger.Info("login succeeded", "user_id", user.ID)
	return &LoginResult{
		User:         user,
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// RefreshToken issues a fresh token pair for an already-authenticated user.
//
// The presented refresh token is not checked against server-side state;
// there is no persisted refresh-token store to check it against. Deployments
// needing revocable refresh tokens must add a persisted, single-use store.
func (s *Service) RefreshToken(ctx context.Context, userID int64, refreshToken string) (*TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeAccountInactive).Errorf("user not found or inactive")
		}
		return nil, oops.Code(CodePersistenceFailed).
			With("operation", "get user").
			Wrap(err)
	}
	if !user.Active {
		return nil, oops.Code(CodeAccountInactive).Errorf("user not found or inactive")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "generate refresh token").
			Wrap(err)
	}

	return &TokenPair{
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// ChangePassword verifies the current password and re-hashes with a fresh
// salt. Returns false for any verification or not-found failure.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) bool {
	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return false
	}
	if !s.hasher.Verify(currentPassword, cred.PasswordHash, cred.PasswordSalt) {
		return false
	}

	digest, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false
	}
	cred.PasswordHash = digest
	cred.PasswordSalt = salt

	if err := s.creds.Update(ctx, cred); err != nil {
		s.logger.Error("change password persist failed", "user_id", userID, "error", err)
		return false
	}
	s.logger.Info("password changed", "user_id", userID)
	return true
}

// ResetPassword is the administrative reset path: it re-hashes the password
// and clears any lockout unconditionally. Callers are expected to gate it
// behind an out-of-band verification step.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) bool {
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return false
	}

	digest, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false
	}
	cred.PasswordHash = digest
	cred.PasswordSalt = salt
	cred.ResetLockout()

	if err := s.creds.Update(ctx, cred); err != nil {
		s.logger.Error("reset password persist failed", "user_id", cred.UserID, "error", err)
		return false
	}
	s.logger.Info("password reset", "user_id", cred.UserID)
	return true
}
