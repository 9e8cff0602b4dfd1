// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/gatewarden/gatewarden/internal/auth"
)

const minPasswordLen = 8

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
}

type registerResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	UserID  int64  `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	Expiration   time.Time `json:"expiration"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	Expiration   time.Time `json:"expiration"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	})
	if err != nil {
		writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "registration successful",
		Email:   user.Email,
		UserID:  user.ID,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:        res.Token,
		RefreshToken: res.RefreshToken,
		Expiration:   res.ExpiresAt,
		Email:        res.User.Email,
		FirstName:    res.User.FirstName,
		LastName:     res.User.LastName,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.auth.RefreshToken(r.Context(), userID, req.RefreshToken)
	if err != nil {
		if auth.Reject(err) == auth.ReasonAccountInactive {
			writeError(w, http.StatusUnauthorized, "user not found or inactive")
			return
		}
		writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
		Expiration:   pair.ExpiresAt,
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if !h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword) {
		writeError(w, http.StatusBadRequest, "password change failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	// Success and unknown-email failure share one response so the endpoint
	// cannot be used to probe for registered addresses.
	h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword)
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the account exists, the password has been reset"})
}
