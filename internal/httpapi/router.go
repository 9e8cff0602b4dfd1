// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package httpapi exposes the auth engine and user management over REST.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// AuthService is the engine surface the HTTP layer consumes.
type AuthService interface {
	Register(ctx context.Context, p auth.RegisterParams) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	RefreshToken(ctx context.Context, userID int64, refreshToken string) (*auth.TokenPair, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) bool
	ResetPassword(ctx context.Context, email, newPassword string) bool
}

// UserService is the user management surface the HTTP layer consumes.
type UserService interface {
	Get(ctx context.Context, id int64) (*auth.User, error)
	List(ctx context.Context, activeOnly bool) ([]*auth.User, error)
	Update(ctx context.Context, id int64, firstName, lastName, gender string) (*auth.User, error)
	Activate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Handler bundles the services behind the REST routes.
type Handler struct {
	auth   AuthService
	users  UserService
	tokens auth.TokenIssuer
	logger *slog.Logger
}

// NewHandler creates the REST handler.
func NewHandler(authSvc AuthService, userSvc UserService, tokens auth.TokenIssuer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:   authSvc,
		users:  userSvc,
		tokens: tokens,
		logger: logger,
	}
}

// Router builds the route table. Anonymous routes: register, login,
// reset-password. Everything else requires a bearer token.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	bearer := NewBearerMiddleware(h.tokens)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", h.handleResetPassword).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(bearer.Handler)
	authed.HandleFunc("/auth/refresh", h.handleRefresh).Methods(http.MethodPost)
	authed.HandleFunc("/auth/change-password", h.handleChangePassword).Methods(http.MethodPost)

	authed.HandleFunc("/users", h.handleListUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id:[0-9]+}", h.handleGetUser).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id:[0-9]+}", h.handleUpdateUser).Methods(http.MethodPut)
	authed.HandleFunc("/users/{id:[0-9]+}", h.handleDeleteUser).Methods(http.MethodDelete)
	authed.HandleFunc("/users/{id:[0-9]+}/activate", h.handleActivateUser).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id:[0-9]+}/deactivate", h.handleDeactivateUser).Methods(http.MethodPost)

	return r
}
