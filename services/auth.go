// ABOUTME: Upstream authentication: login, logout, and cached identity
// ABOUTME: Login persists the token pair and identity; logout clears both

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/calvora/ops-console/backend/models"
)

// loginResponse is the upstream login payload: a token pair plus the
// authenticated user.
type loginResponse struct {
	models.TokenPairResponse
	User models.Identity `json:"user"`
}

// AuthService signs the console in and out of the upstream API.
type AuthService struct {
	requester *Requester
	tokens    *TokenStore
	loginPath string
}

// NewAuthService creates an auth service that logs in against loginPath.
func NewAuthService(requester *Requester, tokens *TokenStore, loginPath string) *AuthService {
	if loginPath == "" {
		loginPath = "auth/login"
	}
	return &AuthService{
		requester: requester,
		tokens:    tokens,
		loginPath: loginPath,
	}
}

// Login exchanges credentials for a token pair and stores it together
// with the user's identity.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	resp, err := s.requester.Do(ctx, s.loginPath, RequestOptions{
		Method: http.MethodPost,
		Body:   models.LoginRequest{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}

	var payload loginResponse
	if err := resp.JSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}

	state, err := payload.State()
	if err != nil {
		return nil, fmt.Errorf("login response contained invalid expiry: %w", err)
	}
	if state.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}

	s.tokens.Save(state)
	if raw, err := json.Marshal(payload.User); err == nil {
		s.tokens.SaveIdentity(string(raw))
	}

	slog.Info("User authenticated against upstream API", "username", payload.User.Username)
	return &payload.User, nil
}

// Logout discards the stored credential pair and identity. The upstream
// API holds no server-side session, so nothing is called remotely.
func (s *AuthService) Logout() {
	s.tokens.Clear()
	slog.Info("Cleared stored credentials on logout")
}

// Identity returns the stored identity, if a user is signed in.
func (s *AuthService) Identity() (*models.Identity, bool) {
	raw, ok := s.tokens.Identity()
	if !ok || raw == "" {
		return nil, false
	}
	var ident models.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil {
		return nil, false
	}
	return &ident, true
}
