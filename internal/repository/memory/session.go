package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// SessionStore is an in-process implementation of domain.SessionStore, used
// when Redis is not configured and in tests. Sessions do not survive a
// restart.
type SessionStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{creds: make(map[string]domain.Credential)}
}

// Get returns the credential for a session, or domain.ErrSessionNotFound.
func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	// Copy so callers cannot mutate the stored credential.
	return maps.Clone(cred), nil
}

// Set stores or replaces the credential for a session.
func (s *SessionStore) Set(_ context.Context, sessionID string, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[sessionID] = maps.Clone(cred)
	return nil
}

// Delete removes the session's credential. Unknown sessions are not an error.
func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, sessionID)
	return nil
}
