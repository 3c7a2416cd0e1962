package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/swirlhq/aio-assistant/internal/domain"
	"github.com/swirlhq/aio-assistant/internal/security"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps session credentials in Redis, encrypted at rest with
// AES-GCM. Entries have no TTL; sessions live until clear_context or an
// explicit logout removes them.
type SessionStore struct {
	client    *Client
	encryptor *security.Encryptor
}

// NewSessionStore creates a session store on the given client.
func NewSessionStore(client *Client, encryptor *security.Encryptor) *SessionStore {
	return &SessionStore{client: client, encryptor: encryptor}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get returns the credential for a session, or domain.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.Credential, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var cred domain.Credential
	if err := s.encryptor.DecryptJSON(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}
	return cred, nil
}

// Set stores or replaces the credential for a session.
func (s *SessionStore) Set(ctx context.Context, sessionID string, cred domain.Credential) error {
	data, err := s.encryptor.EncryptJSON(cred)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	if err := s.client.rdb.Set(ctx, sessionKey(sessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Delete removes the session's credential. Unknown sessions are not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
