package domain

import "context"

// ContextRepository persists context snapshots, conversation turns and
// preferences keyed by session id. All errors it returns are wrapped as
// *PersistenceError (or *ConnectionError on a failed connect).
type ContextRepository interface {
	// SaveContext merges the supplied fields into the session's context
	// document. Only supplied keys change; a key supplied with a nil value
	// overwrites the stored one. updatedAt is always stamped, createdAt
	// only on insert.
	SaveContext(ctx context.Context, sessionID string, fields map[string]any) error

	// GetContext returns the full document, or nil when none exists.
	GetContext(ctx context.Context, sessionID string) (ContextDocument, error)

	// AddConversationTurn appends a turn with a server-assigned timestamp.
	AddConversationTurn(ctx context.Context, turn ConversationTurn) error

	// GetConversationHistory returns at most limit of the session's most
	// recent turns, in chronological order.
	GetConversationHistory(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error)

	// SaveUserPreference upserts a preference keyed by (sessionId, key).
	SaveUserPreference(ctx context.Context, sessionID, key string, value any) error

	// GetUserPreferences returns the full key to value map for a session.
	GetUserPreferences(ctx context.Context, sessionID string) (map[string]any, error)

	// SearchContexts matches query case-insensitively against textual
	// context fields, optionally scoped to one session (sessionID != ""),
	// returning up to 10 documents ordered by most recently updated.
	SearchContexts(ctx context.Context, query, sessionID string) ([]ContextDocument, error)

	// DeleteContext removes the session's context, turns and preferences.
	// The deletes are independent; partial failure can leave orphans.
	DeleteContext(ctx context.Context, sessionID string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
