package domain

import "time"

// Context field names written by the query path. The full set is overwritten
// on every query dispatch, including with null when the assistant result does
// not carry the field this turn.
const (
	FieldSessionID         = "sessionId"
	FieldLastQuery         = "lastQuery"
	FieldLastResponse      = "lastResponse"
	FieldConversationCount = "conversationCount"
	FieldLastUpdated       = "lastUpdated"
	FieldCurrentLocation   = "currentLocation"
	FieldLocationUpdatedAt = "locationUpdatedAt"
	FieldCreatedAt         = "createdAt"
	FieldUpdatedAt         = "updatedAt"
)

// ContextDocument is the per-session context snapshot: a mapping of named
// result fields (lastQuery, lastEvents, ...) to their most recent values.
// Writes are partial merges; only supplied keys change, and a key supplied
// with a nil value overwrites the stored one (last-write-wins, no versioning).
type ContextDocument map[string]any

// SessionID returns the owning session id, or "" when unset.
func (d ContextDocument) SessionID() string {
	s, _ := d[FieldSessionID].(string)
	return s
}

// CurrentLocation returns the session's last reported location, or "".
func (d ContextDocument) CurrentLocation() string {
	s, _ := d[FieldCurrentLocation].(string)
	return s
}

// ConversationCount returns the number of query dispatches recorded so far.
// BSON decodes numbers as int32, int64 or float64 depending on how they were
// written, so all three are accepted.
func (d ContextDocument) ConversationCount() int {
	switch v := d[FieldConversationCount].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// LastUpdated returns the lastUpdated stamp when present.
func (d ContextDocument) LastUpdated() (time.Time, bool) {
	t, ok := d[FieldLastUpdated].(time.Time)
	return t, ok
}
