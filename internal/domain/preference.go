package domain

import "time"

// UserPreference is a per-session key/value preference with upsert semantics;
// unique per (sessionId, key).
type UserPreference struct {
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Key       string    `json:"key" bson:"key"`
	Value     any       `json:"value" bson:"value"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
