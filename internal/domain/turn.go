package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one recorded message in a session's conversation log.
// Turns are append-only; the repository assigns the timestamp on insert.
type ConversationTurn struct {
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Method    Method    `json:"method" bson:"method"`
	Metadata  any       `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
