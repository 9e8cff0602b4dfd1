// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// MockUserRepository is a testify mock for auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock that asserts its expectations on cleanup.
func NewMockUserRepository(t *testing.T) *MockUserRepository {
	t.Helper()
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) CreateWithCredential(ctx context.Context, user *auth.User, cred *auth.Credential) error {
	args := m.Called(ctx, user, cred)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, activeOnly bool) ([]*auth.User, error) {
	args := m.Called(ctx, activeOnly)
	var users []*auth.User
	if v := args.Get(0); v != nil {
		users = v.([]*auth.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCredentialRepository is a testify mock for auth.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

// NewMockCredentialRepository creates a mock that asserts its expectations on cleanup.
func NewMockCredentialRepository(t *testing.T) *MockCredentialRepository {
	t.Helper()
	m := &MockCredentialRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) GetByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	args := m.Called(ctx, email)
	var c *auth.Credential
	if v := args.Get(0); v != nil {
		c = v.(*auth.Credential)
	}
	return c, args.Error(1)
}

func (m *MockCredentialRepository) GetByUserID(ctx context.Context, userID int64) (*auth.Credential, error) {
	args := m.Called(ctx, userID)
	var c *auth.Credential
	if v := args.Get(0); v != nil {
		c = v.(*auth.Credential)
	}
	return c, args.Error(1)
}

func (m *MockCredentialRepository) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialRepository) Update(ctx context.Context, cred *auth.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPasswordHasher is a testify mock for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations on cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) ([]byte, []byte, error) {
	args := m.Called(password)
	var digest, salt []byte
	if v := args.Get(0); v != nil {
		digest = v.([]byte)
	}
	if v := args.Get(1); v != nil {
		salt = v.([]byte)
	}
	return digest, salt, args.Error(2)
}

func (m *MockPasswordHasher) Verify(password string, digest, salt []byte) bool {
	args := m.Called(password, digest, salt)
	return args.Bool(0)
}

// MockTokenIssuer is a testify mock for auth.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

// NewMockTokenIssuer creates a mock that asserts its expectations on cleanup.
func NewMockTokenIssuer(t *testing.T) *MockTokenIssuer {
	t.Helper()
	m := &MockTokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenIssuer) Issue(user *auth.User) (string, time.Time, error) {
	args := m.Called(user)
	var expiresAt time.Time
	if v := args.Get(1); v != nil {
		expiresAt = v.(time.Time)
	}
	return args.String(0), expiresAt, args.Error(2)
}

func (m *MockTokenIssuer) Validate(token string) (*auth.Claims, error) {
	args := m.Called(token)
	var c *auth.Claims
	if v := args.Get(0); v != nil {
		c = v.(*auth.Claims)
	}
	return c, args.Error(1)
}

func (m *MockTokenIssuer) GenerateRefreshToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository       = (*MockUserRepository)(nil)
	_ auth.CredentialRepository = (*MockCredentialRepository)(nil)
	_ auth.PasswordHasher       = (*MockPasswordHasher)(nil)
	_ auth.TokenIssuer          = (*MockTokenIssuer)(nil)
)
