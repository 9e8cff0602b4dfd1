// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/httpapi"
)

// mockAuthService is a testify mock for httpapi.AuthService.
type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, p auth.RegisterParams) (*auth.User, error) {
	args := m.Called(ctx, p)
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, email, password)
	var r *auth.LoginResult
	if v := args.Get(0); v != nil {
		r = v.(*auth.LoginResult)
	}
	return r, args.Error(1)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, userID int64, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, userID, refreshToken)
	var p *auth.TokenPair
	if v := args.Get(0); v != nil {
		p = v.(*auth.TokenPair)
	}
	return p, args.Error(1)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) bool {
	return m.Called(ctx, userID, currentPassword, newPassword).Bool(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email, newPassword string) bool {
	return m.Called(ctx, email, newPassword).Bool(0)
}

// mockUserService is a testify mock for httpapi.UserService.
type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, activeOnly bool) ([]*auth.User, error) {
	args := m.Called(ctx, activeOnly)
	var us []*auth.User
	if v := args.Get(0); v != nil {
		us = v.([]*auth.User)
	}
	return us, args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, id int64, firstName, lastName, gender string) (*auth.User, error) {
	args := m.Called(ctx, id, firstName, lastName, gender)
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *mockUserService) Activate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type handlerFixture struct {
	authSvc *mockAuthService
	userSvc *mockUserService
	issuer  *auth.JWTIssuer
	server  http.Handler
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	authSvc := &mockAuthService{}
	authSvc.Mock.Test(t)
	userSvc := &mockUserService{}
	userSvc.Mock.Test(t)
	t.Cleanup(func() {
		authSvc.AssertExpectations(t)
		userSvc.AssertExpectations(t)
	})

	issuer := newIssuer(t)
	h := httpapi.NewHandler(authSvc, userSvc, issuer, nil)
	return &handlerFixture{
		authSvc: authSvc,
		userSvc: userSvc,
		issuer:  issuer,
		server:  h.Router(),
	}
}

func (f *handlerFixture) bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, _, err := f.issuer.Issue(&auth.User{ID: userID, Active: true})
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *handlerFixture) do(t *testing.T, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister(t *testing.T) {
	t.Run("returns created user", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Register", mock.Anything, auth.RegisterParams{
			Email:     "new@example.com",
			Password:  "password123",
			FirstName: "Grace",
			LastName:  "Hopper",
		}).Return(&auth.User{ID: 7, Email: "new@example.com"}, nil)

		rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":     "new@example.com",
			"password":  "password123",
			"firstName": "Grace",
			"lastName":  "Hopper",
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Email  string `json:"email"`
			UserID int64  `json:"userId"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "new@example.com", resp.Email)
		assert.Equal(t, int64(7), resp.UserID)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":    "not-an-email",
			"password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":    "new@example.com",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("taken email maps to 409", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, oops.Code(auth.CodeEmailTaken).Errorf("taken"))

		rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":    "taken@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("returns token pair and profile", func(t *testing.T) {
		f := newFixture(t)
		expiresAt := time.Now().Add(time.Hour).UTC()
		f.authSvc.On("Login", mock.Anything, "ada@example.com", "correct").
			Return(&auth.LoginResult{
				User:         &auth.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
				Token:        "signed-token",
				RefreshToken: "refresh-token",
				ExpiresAt:    expiresAt,
			}, nil)

		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "correct",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refreshToken"`
			Email        string `json:"email"`
			FirstName    string `json:"firstName"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, "Ada", resp.FirstName)
	})

	t.Run("invalid credentials map to 401", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Login", mock.Anything, "ada@example.com", "wrong").
			Return(nil, oops.Code(auth.CodeInvalidCredentials).Errorf("nope"))

		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("locked account maps to 423", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Login", mock.Anything, "ada@example.com", "correct").
			Return(nil, oops.Code(auth.CodeAccountLocked).Errorf("locked"))

		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "correct",
		})
		assert.Equal(t, http.StatusLocked, rec.Code)
	})

	t.Run("inactive account maps to 403", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Login", mock.Anything, "ada@example.com", "correct").
			Return(nil, oops.Code(auth.CodeAccountInactive).Errorf("inactive"))

		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "correct",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("store fault maps to 500", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("Login", mock.Anything, "ada@example.com", "correct").
			Return(nil, oops.Code(auth.CodePersistenceFailed).Errorf("db down"))

		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "correct",
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRefresh(t *testing.T) {
	t.Run("requires bearer token", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
			"refreshToken": "some-refresh",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("derives user from bearer claims", func(t *testing.T) {
		f := newFixture(t)
		expiresAt := time.Now().Add(time.Hour).UTC()
		f.authSvc.On("RefreshToken", mock.Anything, int64(42), "some-refresh").
			Return(&auth.TokenPair{Token: "new-token", RefreshToken: "new-refresh", ExpiresAt: expiresAt}, nil)

		rec := f.do(t, http.MethodPost, "/api/auth/refresh", f.bearer(t, 42), map[string]string{
			"refreshToken": "some-refresh",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "new-token", resp.Token)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("unknown or inactive user maps to 401", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("RefreshToken", mock.Anything, int64(42), "some-refresh").
			Return(nil, oops.Code(auth.CodeAccountInactive).Errorf("user not found or inactive"))

		rec := f.do(t, http.MethodPost, "/api/auth/refresh", f.bearer(t, 42), map[string]string{
			"refreshToken": "some-refresh",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing refresh token rejected", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", f.bearer(t, 42), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleChangePassword(t *testing.T) {
	t.Run("changes password for authenticated user", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("ChangePassword", mock.Anything, int64(42), "old-pass", "new-password").
			Return(true)

		rec := f.do(t, http.MethodPost, "/api/auth/change-password", f.bearer(t, 42), map[string]string{
			"currentPassword": "old-pass",
			"newPassword":     "new-password",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failure maps to 400", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("ChangePassword", mock.Anything, int64(42), "bad", "new-password").
			Return(false)

		rec := f.do(t, http.MethodPost, "/api/auth/change-password", f.bearer(t, 42), map[string]string{
			"currentPassword": "bad",
			"newPassword":     "new-password",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires bearer token", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/change-password", "", map[string]string{
			"currentPassword": "old",
			"newPassword":     "new-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleResetPassword(t *testing.T) {
	t.Run("success and unknown email share one response", func(t *testing.T) {
		f := newFixture(t)
		f.authSvc.On("ResetPassword", mock.Anything, "known@example.com", "new-password").Return(true)
		f.authSvc.On("ResetPassword", mock.Anything, "ghost@example.com", "new-password").Return(false)

		recKnown := f.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
			"email":       "known@example.com",
			"newPassword": "new-password",
		})
		recGhost := f.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
			"email":       "ghost@example.com",
			"newPassword": "new-password",
		})

		assert.Equal(t, http.StatusOK, recKnown.Code)
		assert.Equal(t, http.StatusOK, recGhost.Code)
		assert.Equal(t, recKnown.Body.String(), recGhost.Body.String())
	})
}

func TestUserHandlers(t *testing.T) {
	t.Run("list users", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("List", mock.Anything, false).Return([]*auth.User{
			{ID: 1, Email: "a@example.com", Active: true},
			{ID: 2, Email: "b@example.com"},
		}, nil)

		rec := f.do(t, http.MethodGet, "/api/users", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "a@example.com", resp[0].Email)
	})

	t.Run("list active users only", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("List", mock.Anything, true).Return([]*auth.User{}, nil)

		rec := f.do(t, http.MethodGet, "/api/users?active=true", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get user", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Get", mock.Anything, int64(7)).
			Return(&auth.User{ID: 7, Email: "ada@example.com"}, nil)

		rec := f.do(t, http.MethodGet, "/api/users/7", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing user maps to 404", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Get", mock.Anything, int64(99)).Return(nil, auth.ErrNotFound)

		rec := f.do(t, http.MethodGet, "/api/users/99", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update user", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Update", mock.Anything, int64(7), "Ada", "King", "female").
			Return(&auth.User{ID: 7, FirstName: "Ada", LastName: "King"}, nil)

		rec := f.do(t, http.MethodPut, "/api/users/7", f.bearer(t, 42), map[string]string{
			"firstName": "Ada",
			"lastName":  "King",
			"gender":    "female",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("update requires names", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPut, "/api/users/7", f.bearer(t, 42), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete user", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Delete", mock.Anything, int64(7)).Return(nil)

		rec := f.do(t, http.MethodDelete, "/api/users/7", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("deactivate user", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Deactivate", mock.Anything, int64(7)).Return(nil)

		rec := f.do(t, http.MethodPost, "/api/users/7/deactivate", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("activate user", func(t *testing.T) {
		f := newFixture(t)
		f.userSvc.On("Activate", mock.Anything, int64(7)).Return(nil)

		rec := f.do(t, http.MethodPost, "/api/users/7/activate", f.bearer(t, 42), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("users routes require bearer token", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodGet, "/api/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
