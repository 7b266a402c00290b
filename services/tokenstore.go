// ABOUTME: Pluggable key/value storage plus the typed token store built on it
// ABOUTME: Token reads and writes go through one mutex so pairs never tear

package services

import (
	"sync"
	"time"

	"github.com/calvora/ops-console/backend/models"
)

// Storage keys for the credential pair and the cached identity blob.
const (
	keyAccessToken           = "accessToken"
	keyRefreshToken          = "refreshToken"
	keyAccessTokenExpiresAt  = "accessTokenExpiresAt"
	keyRefreshTokenExpiresAt = "refreshTokenExpiresAt"
	keyIdentity              = "identity"
)

// KeyValue is the minimal storage contract the token store needs. The
// default is in-memory; a persistent backend can be swapped in without
// touching callers.
type KeyValue interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemoryKeyValue is a mutex-guarded in-process KeyValue.
type MemoryKeyValue struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKeyValue creates an empty in-memory store.
func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{items: make(map[string]string)}
}

func (m *MemoryKeyValue) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok
}

func (m *MemoryKeyValue) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *MemoryKeyValue) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// TokenStore persists the upstream credential pair. All operations on the
// pair are atomic with respect to each other.
type TokenStore struct {
	mu sync.Mutex
	kv KeyValue
}

// NewTokenStore creates a token store on top of the given backend.
func NewTokenStore(kv KeyValue) *TokenStore {
	return &TokenStore{kv: kv}
}

// Load reads the current token state. Absent or malformed expiry values
// come back as zero times.
func (s *TokenStore) Load() models.TokenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *TokenStore) loadLocked() models.TokenState {
	state := models.TokenState{}
	if v, ok := s.kv.Get(keyAccessToken); ok {
		state.AccessToken = v
	}
	if v, ok := s.kv.Get(keyRefreshToken); ok {
		state.RefreshToken = v
	}
	state.AccessTokenExpiresAt = s.loadTimeLocked(keyAccessTokenExpiresAt)
	state.RefreshTokenExpiresAt = s.loadTimeLocked(keyRefreshTokenExpiresAt)
	return state
}

func (s *TokenStore) loadTimeLocked(key string) time.Time {
	raw, ok := s.kv.Get(key)
	if !ok || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Save replaces the stored credential pair.
func (s *TokenStore) Save(state models.TokenState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Set(keyAccessToken, state.AccessToken)
	s.kv.Set(keyRefreshToken, state.RefreshToken)
	s.saveTimeLocked(keyAccessTokenExpiresAt, state.AccessTokenExpiresAt)
	s.saveTimeLocked(keyRefreshTokenExpiresAt, state.RefreshTokenExpiresAt)
}

func (s *TokenStore) saveTimeLocked(key string, t time.Time) {
	if t.IsZero() {
		s.kv.Delete(key)
		return
	}
	s.kv.Set(key, t.Format(time.RFC3339))
}

// Clear removes the credential pair and the cached identity.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Delete(keyAccessToken)
	s.kv.Delete(keyRefreshToken)
	s.kv.Delete(keyAccessTokenExpiresAt)
	s.kv.Delete(keyRefreshTokenExpiresAt)
	s.kv.Delete(keyIdentity)
}

// SaveIdentity stores the serialized identity blob alongside the tokens.
func (s *TokenStore) SaveIdentity(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Set(keyIdentity, raw)
}

// Identity returns the stored identity blob, if any.
func (s *TokenStore) Identity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Get(keyIdentity)
}
