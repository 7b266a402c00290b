// ABOUTME: Session authentication middleware for the console API
// ABOUTME: Validates session cookies and attaches user claims to the request context

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/calvora/ops-console/backend/models"
)

// SessionCookieName is the console's browser session cookie.
const SessionCookieName = "CONSOLE_SESSION"

// AuthMode defines how authentication is enforced
type AuthMode string

const (
	// AuthModeDisabled skips all authentication
	AuthModeDisabled AuthMode = "disabled"
	// AuthModeOptional validates sessions if present, allows anonymous
	AuthModeOptional AuthMode = "optional"
	// AuthModeRequired rejects requests without a valid session
	AuthModeRequired AuthMode = "required"
)

// SessionValidatorFunc validates a session ID and returns user claims if valid
type SessionValidatorFunc func(sessionID string) *UserClaims

// AuthConfig holds authentication middleware settings
type AuthConfig struct {
	Mode             AuthMode
	SessionValidator SessionValidatorFunc
}

// ValidateAuthMode validates an auth mode string and returns the corresponding AuthMode.
// Empty string defaults to AuthModeOptional.
// Returns error for invalid mode values.
func ValidateAuthMode(mode string) (AuthMode, error) {
	switch mode {
	case "", "optional":
		return AuthModeOptional, nil
	case "disabled":
		return AuthModeDisabled, nil
	case "required":
		return AuthModeRequired, nil
	default:
		return "", fmt.Errorf("invalid auth mode: %q (must be disabled, optional, or required)", mode)
	}
}

// UserClaims identifies the signed-in user for the duration of a request
type UserClaims struct {
	Username string
	UserID   string
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const userClaimsKey contextKey = "userClaims"

// Auth returns middleware that validates the session cookie. Behavior
// depends on the configured mode:
//   - disabled: passes all requests through
//   - optional: validates a session if present, allows anonymous
//   - required: rejects requests without a valid session
func Auth(cfg AuthConfig) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if cfg.Mode == AuthModeDisabled {
				next(w, r)
				return
			}

			if cfg.SessionValidator != nil {
				cookie, err := r.Cookie(SessionCookieName)
				if err == nil && cookie.Value != "" {
					claims := cfg.SessionValidator(cookie.Value)
					if claims != nil {
						slog.Debug("Auth: valid session cookie", "path", r.URL.Path, "user", claims.Username)
						ctx := context.WithValue(r.Context(), userClaimsKey, claims)
						next(w, r.WithContext(ctx))
						return
					}
					// Session cookie present but invalid
					slog.Debug("Auth rejected: invalid session", "path", r.URL.Path)
					writeJSONError(w, "Invalid session", models.KindUnauthorized, http.StatusUnauthorized)
					return
				}
			}

			// No auth provided
			if cfg.Mode == AuthModeRequired {
				slog.Debug("Auth rejected: no session provided", "path", r.URL.Path, "mode", cfg.Mode)
				writeJSONError(w, "Authentication required", models.KindUnauthorized, http.StatusUnauthorized)
				return
			}

			// Optional mode with no auth: pass through
			slog.Debug("Auth: anonymous request allowed", "path", r.URL.Path, "mode", cfg.Mode)
			next(w, r)
		}
	}
}

// GetUserClaims extracts user claims from request context.
// Returns nil if no claims are present.
func GetUserClaims(r *http.Request) *UserClaims {
	claims, ok := r.Context().Value(userClaimsKey).(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}
