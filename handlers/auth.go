// ABOUTME: Auth handlers implementing the BFF session pattern
// ABOUTME: Handles login, logout, session management with httpOnly cookies

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calvora/ops-console/backend/middleware"
	"github.com/calvora/ops-console/backend/models"
)

// Login authenticates against the upstream API and creates a server-side
// session. Tokens stay on the server; the browser only gets a session ID.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		h.writeError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	identity, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Authentication failed", "username", req.Username, "error", err)
		h.writeJSON(w, http.StatusUnauthorized, models.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	sessionID, err := h.sessions.Create(identity.Username, identity.UserID)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		h.writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, sessionID)

	h.writeJSON(w, http.StatusOK, models.LoginResponse{
		Success:  true,
		Username: identity.Username,
		UserID:   identity.UserID,
	})
}

// Me returns the current user's authentication status
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.getSessionFromCookie(r)
	if session == nil {
		h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
			Authenticated: false,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
		Authenticated: true,
		Username:      session.Username,
		UserID:        session.UserID,
	})
}

// Logout clears the session, cookie, and stored upstream credentials
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if h.sessions != nil {
			h.sessions.Delete(cookie.Value)
		}
	}

	if h.auth != nil {
		h.auth.Logout()
	}

	h.clearSessionCookie(w)

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// getSessionFromCookie retrieves the session from the request cookie
func (h *Handler) getSessionFromCookie(r *http.Request) *models.Session {
	if h.sessions == nil {
		return nil
	}

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil {
		return nil
	}

	session, err := h.sessions.Get(cookie.Value)
	if err != nil {
		return nil
	}

	return session
}

// setSessionCookie sets the httpOnly session cookie
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	secure := true
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   3600,
	})
}

// clearSessionCookie removes the session cookie
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	secure := true
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
