// Package httpx provides HTTP handlers and utilities for the storefront API.
package httpx

import (
	"context"
	"net/http"

	"github.com/exclusive-store/storefront/internal/account"
	"github.com/exclusive-store/storefront/internal/session"
)

// SessionManager is the full session surface the auth handlers need;
// *session.Manager satisfies it.
type SessionManager interface {
	Sessions
	Logout(ctx context.Context)
}

// AuthHandlers provides HTTP handlers for account and session operations.
type AuthHandlers struct {
	Accounts *account.Service
	Sessions SessionManager

	// LogoutRedirect is the path clients are sent to after logout.
	LogoutRedirect string
}

// Register handles account creation.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req account.RegisterInput
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.Register(r.Context(), req); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the upstream API and commits the session.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

// Logout ends the current session. Always succeeds locally.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context())
	redirect := h.LogoutRedirect
	if redirect == "" {
		redirect = "/"
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out", "redirect": redirect})
}

// Session reports the current session snapshot.
func (h *AuthHandlers) Session(w http.ResponseWriter, _ *http.Request) {
	snap := h.Sessions.Snapshot()
	resp := struct {
		Loading         bool          `json:"loading"`
		IsAuthenticated bool          `json:"isAuthenticated"`
		User            *session.User `json:"user,omitempty"`
	}{
		Loading:         snap.Loading,
		IsAuthenticated: snap.IsAuthenticated,
		User:            snap.User,
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Profile fetches the signed-in user's profile from the upstream API.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Accounts.Profile(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// ChangePassword changes the signed-in user's password.
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req account.ChangePasswordInput
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ChangePassword(r.Context(), req); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "changed"})
}
