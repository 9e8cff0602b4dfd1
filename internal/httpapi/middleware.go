// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// contextKey is a private type for request context values.
type contextKey int

const userIDKey contextKey = iota

// BearerMiddleware validates Authorization headers and injects the
// authenticated user ID into the request context.
type BearerMiddleware struct {
	tokens auth.TokenIssuer
}

// NewBearerMiddleware creates a bearer token middleware.
func NewBearerMiddleware(tokens auth.TokenIssuer) *BearerMiddleware {
	return &BearerMiddleware{tokens: tokens}
}

// Handler wraps an HTTP handler with bearer token authentication.
// Expected header format: "Authorization: Bearer <token>".
func (m *BearerMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
