// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// errorResponse is the JSON body for all failure responses.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeRejection maps an engine rejection to an HTTP status. Messages stay
// generic; invalid credentials and unknown emails share one body so the API
// cannot be used to enumerate accounts.
func writeRejection(w http.ResponseWriter, err error) {
	switch auth.Reject(err) {
	case auth.ReasonEmailTaken:
		writeError(w, http.StatusConflict, "email already registered")
	case auth.ReasonInvalidCredentials:
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case auth.ReasonAccountLocked:
		writeError(w, http.StatusLocked, "account is temporarily locked due to multiple failed login attempts")
	case auth.ReasonAccountInactive:
		writeError(w, http.StatusForbidden, "account is deactivated")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
