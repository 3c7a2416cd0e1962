package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// AddConversationTurn appends a turn to the session's log. The timestamp is
// assigned here; whatever the caller set is discarded.
func (r *ContextRepository) AddConversationTurn(ctx context.Context, turn domain.ConversationTurn) error {
	coll, err := r.collection(ctx, conversationsCollection)
	if err != nil {
		return &domain.PersistenceError{Op: "add conversation turn", Err: err}
	}

	turn.Timestamp = time.Now().UTC()
	if _, err := coll.InsertOne(ctx, turn); err != nil {
		return &domain.PersistenceError{Op: "add conversation turn", Err: err}
	}
	return nil
}

// GetConversationHistory returns at most limit of the session's most recent
// turns, oldest first. The newest turns are selected by sorting descending,
// then the slice is reversed into chronological order.
func (r *ContextRepository) GetConversationHistory(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	coll, err := r.collection(ctx, conversationsCollection)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get conversation history", Err: err}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{domain.FieldSessionID: sessionID}, opts)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get conversation history", Err: err}
	}
	defer cursor.Close(ctx)

	var turns []domain.ConversationTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, &domain.PersistenceError{Op: "get conversation history", Err: err}
	}

	reverseTurns(turns)
	return turns, nil
}

// reverseTurns flips a newest-first result set into chronological order
// in place.
func reverseTurns(turns []domain.ConversationTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
