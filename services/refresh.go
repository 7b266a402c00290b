// ABOUTME: Proactive access-token refresh coordinated through singleflight
// ABOUTME: Concurrent callers share one refresh call; only a definitive 401 clears state

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/calvora/ops-console/backend/models"
)

// DefaultRefreshLookahead is how far before access-token expiry a refresh
// is attempted.
const DefaultRefreshLookahead = 5 * time.Minute

// refreshRequest is the body sent to the upstream refresh endpoint.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenRefreshCoordinator keeps the stored access token fresh. EnsureFresh
// is safe to call from any number of goroutines; overlapping callers are
// collapsed onto a single upstream refresh.
type TokenRefreshCoordinator struct {
	client    *http.Client
	tokens    *TokenStore
	endpoint  string
	lookahead time.Duration
	group     singleflight.Group
}

// NewTokenRefreshCoordinator creates a coordinator that refreshes against
// the given endpoint URL. A zero lookahead falls back to the default.
func NewTokenRefreshCoordinator(client *http.Client, tokens *TokenStore, endpoint string, lookahead time.Duration) *TokenRefreshCoordinator {
	if lookahead <= 0 {
		lookahead = DefaultRefreshLookahead
	}
	return &TokenRefreshCoordinator{
		client:    client,
		tokens:    tokens,
		endpoint:  endpoint,
		lookahead: lookahead,
	}
}

// EnsureFresh refreshes the access token if it expires within the
// lookahead window. It returns nil when no refresh is needed, when no
// usable refresh token exists, or when the refresh succeeds.
func (c *TokenRefreshCoordinator) EnsureFresh(ctx context.Context) error {
	state := c.tokens.Load()
	if !c.needsRefresh(state) {
		return nil
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		// Re-check under the flight: a caller that queued behind the
		// winner finds the state already fresh and skips the call.
		current := c.tokens.Load()
		if !c.needsRefresh(current) {
			return nil, nil
		}
		return nil, c.refresh(ctx, current)
	})
	return err
}

func (c *TokenRefreshCoordinator) needsRefresh(state models.TokenState) bool {
	if state.AccessToken == "" {
		return false
	}
	if !state.AccessExpiresWithin(c.lookahead) {
		return false
	}
	return state.RefreshUsable()
}

func (c *TokenRefreshCoordinator) refresh(ctx context.Context, state models.TokenState) error {
	payload, err := json.Marshal(refreshRequest{RefreshToken: state.RefreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+state.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The refresh token itself was rejected. Clear everything so the
		// next request surfaces a clean unauthorized instead of retrying
		// a dead credential.
		slog.Warn("Refresh token rejected, clearing token state")
		c.tokens.Clear()
		return fmt.Errorf("token refresh rejected with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// Transient upstream trouble. Existing tokens stay untouched so
		// a still-valid access token keeps working.
		return fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var pair models.TokenPairResponse
	if err := json.Unmarshal(body, &pair); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	fresh, err := pair.State()
	if err != nil {
		return fmt.Errorf("refresh response contained invalid expiry: %w", err)
	}
	if fresh.AccessToken == "" {
		return fmt.Errorf("refresh response missing access token")
	}

	c.tokens.Save(fresh)
	slog.Debug("Access token refreshed",
		"expires_at", fresh.AccessTokenExpiresAt.Format(time.RFC3339))
	return nil
}
