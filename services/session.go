// ABOUTME: Server-side session management for the console's BFF pattern
// ABOUTME: Sessions carry identity only; tokens stay in the token store

package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/calvora/ops-console/backend/cache"
	"github.com/calvora/ops-console/backend/models"
)

// defaultSessionTTL bounds how long a browser session lives without a
// fresh login.
const defaultSessionTTL = 8 * time.Hour

// SessionService manages server-side browser sessions backed by the
// shared cache.
type SessionService struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionService creates a new session service. A zero TTL falls back
// to the default.
func NewSessionService(c *cache.Cache, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{cache: c, ttl: ttl}
}

// Create generates a new session and stores it in the cache
// Returns the cryptographically secure session ID
func (s *SessionService) Create(username, userID string) (string, error) {
	sessionIDBytes := make([]byte, 32)
	if _, err := rand.Read(sessionIDBytes); err != nil {
		return "", err
	}
	sessionID := base64.URLEncoding.EncodeToString(sessionIDBytes)

	session := &models.Session{
		ID:        sessionID,
		Username:  username,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	s.cache.SetWithTTL(sessionKey(sessionID), session, s.ttl)

	return sessionID, nil
}

// Get retrieves a session by ID
func (s *SessionService) Get(sessionID string) (*models.Session, error) {
	val, ok := s.cache.Get(sessionKey(sessionID))
	if !ok {
		return nil, errors.New("session not found")
	}

	session, ok := val.(*models.Session)
	if !ok {
		return nil, errors.New("invalid session data")
	}

	return session, nil
}

// Delete removes a session from the cache
func (s *SessionService) Delete(sessionID string) {
	s.cache.Clear(sessionKey(sessionID))
}

// sessionKey returns the cache key for a session ID
func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
