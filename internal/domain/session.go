package domain

import "context"

// Credential is the opaque authorization blob stored for a session
// (OAuth tokens in practice; the dispatcher never looks inside it).
type Credential map[string]any

// SessionStore maps opaque session ids to credentials. Implementations are
// injected so the backing store can move from in-memory to Redis or a secret
// store without touching dispatch logic.
type SessionStore interface {
	// Get returns the credential for a session, or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (Credential, error)

	// Set stores or replaces the credential for a session.
	Set(ctx context.Context, sessionID string, cred Credential) error

	// Delete removes the session's credential. Deleting an unknown session
	// is not an error.
	Delete(ctx context.Context, sessionID string) error
}
