package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// SaveUserPreference upserts a preference keyed by (sessionId, key).
func (r *ContextRepository) SaveUserPreference(ctx context.Context, sessionID, key string, value any) error {
	coll, err := r.collection(ctx, preferencesCollection)
	if err != nil {
		return &domain.PersistenceError{Op: "save preference", Err: err}
	}

	now := time.Now().UTC()
	_, err = coll.UpdateOne(ctx,
		bson.M{domain.FieldSessionID: sessionID, "key": key},
		bson.M{
			"$set": bson.M{
				domain.FieldSessionID: sessionID,
				"key":                 key,
				"value":               value,
				domain.FieldUpdatedAt: now,
			},
			"$setOnInsert": bson.M{domain.FieldCreatedAt: now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &domain.PersistenceError{Op: "save preference", Err: err}
	}
	return nil
}

// GetUserPreferences returns every preference for the session as a key to
// value map. A session with no preferences yields an empty map.
func (r *ContextRepository) GetUserPreferences(ctx context.Context, sessionID string) (map[string]any, error) {
	coll, err := r.collection(ctx, preferencesCollection)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get preferences", Err: err}
	}

	cursor, err := coll.Find(ctx, bson.M{domain.FieldSessionID: sessionID})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get preferences", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []domain.UserPreference
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.PersistenceError{Op: "get preferences", Err: err}
	}

	prefs := make(map[string]any, len(docs))
	for _, d := range docs {
		prefs[d.Key] = normalizeValue(d.Value)
	}
	return prefs, nil
}
