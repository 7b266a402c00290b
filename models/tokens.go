// ABOUTME: Access/refresh token state and expiry arithmetic
// ABOUTME: A missing access-token expiry is treated as already expired (fail safe)

package models

import (
	"fmt"
	"time"
)

// TokenState holds the bearer credential pair for the upstream API. Zero
// expiry times mean the timestamp was absent from storage.
type TokenState struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// Empty reports whether no credentials are held at all.
func (t TokenState) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// AccessExpiresWithin reports whether the access token expires within d.
// An access token without a stored expiry counts as already expired.
func (t TokenState) AccessExpiresWithin(d time.Duration) bool {
	if t.AccessTokenExpiresAt.IsZero() {
		return true
	}
	return time.Until(t.AccessTokenExpiresAt) <= d
}

// RefreshUsable reports whether the refresh token is present and not past
// its own expiry. A refresh token without a stored expiry is treated as
// usable; the refresh call itself is the authority on its validity.
func (t TokenState) RefreshUsable() bool {
	if t.RefreshToken == "" {
		return false
	}
	if t.RefreshTokenExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(t.RefreshTokenExpiresAt)
}

// TokenPairResponse is the token payload returned by the upstream auth and
// refresh endpoints. Expiry timestamps are RFC3339 strings.
type TokenPairResponse struct {
	AccessToken           string `json:"accessToken"`
	RefreshToken          string `json:"refreshToken"`
	AccessTokenExpiresAt  string `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt string `json:"refreshTokenExpiresAt"`
}

// State parses the wire payload into a TokenState. Empty timestamps map to
// zero times; malformed ones are an error so a bad pair is never persisted.
func (p TokenPairResponse) State() (TokenState, error) {
	state := TokenState{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
	}

	var err error
	if state.AccessTokenExpiresAt, err = parseExpiry(p.AccessTokenExpiresAt); err != nil {
		return TokenState{}, fmt.Errorf("access token expiry: %w", err)
	}
	if state.RefreshTokenExpiresAt, err = parseExpiry(p.RefreshTokenExpiresAt); err != nil {
		return TokenState{}, fmt.Errorf("refresh token expiry: %w", err)
	}
	return state, nil
}

func parseExpiry(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
