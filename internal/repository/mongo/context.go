package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

const (
	contextsCollection      = "contexts"
	conversationsCollection = "conversations"
	preferencesCollection   = "user_preferences"

	searchLimit = 10
)

// ContextRepository implements domain.ContextRepository on MongoDB.
type ContextRepository struct {
	client *Client
}

// NewContextRepository creates a repository backed by the given client.
func NewContextRepository(client *Client) *ContextRepository {
	return &ContextRepository{client: client}
}

func (r *ContextRepository) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := r.client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// buildContextUpdate produces the merge update for a context save. Caller
// supplied fields win, including explicit nils; sessionId and the audit
// stamps cannot be overridden from outside.
func buildContextUpdate(sessionID string, fields map[string]any, now time.Time) bson.M {
	set := bson.M{}
	for k, v := range fields {
		switch k {
		case domain.FieldSessionID, domain.FieldCreatedAt, domain.FieldUpdatedAt:
			continue
		}
		set[k] = v
	}
	set[domain.FieldSessionID] = sessionID
	set[domain.FieldUpdatedAt] = now

	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{domain.FieldCreatedAt: now},
	}
}

// SaveContext merges fields into the session's context document, creating it
// on first write.
func (r *ContextRepository) SaveContext(ctx context.Context, sessionID string, fields map[string]any) error {
	coll, err := r.collection(ctx, contextsCollection)
	if err != nil {
		return &domain.PersistenceError{Op: "save context", Err: err}
	}

	update := buildContextUpdate(sessionID, fields, time.Now().UTC())
	_, err = coll.UpdateOne(ctx,
		bson.M{domain.FieldSessionID: sessionID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &domain.PersistenceError{Op: "save context", Err: err}
	}
	return nil
}

// GetContext returns the session's context document, or nil when none exists.
func (r *ContextRepository) GetContext(ctx context.Context, sessionID string) (domain.ContextDocument, error) {
	coll, err := r.collection(ctx, contextsCollection)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get context", Err: err}
	}

	var doc bson.M
	err = coll.FindOne(ctx, bson.M{domain.FieldSessionID: sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get context", Err: err}
	}
	return normalizeDocument(doc), nil
}

// SearchContexts matches query case-insensitively against the stored query
// and response text, most recently updated first.
func (r *ContextRepository) SearchContexts(ctx context.Context, query, sessionID string) ([]domain.ContextDocument, error) {
	coll, err := r.collection(ctx, contextsCollection)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "search contexts", Err: err}
	}

	pattern := primitive.Regex{Pattern: escapeRegex(query), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{domain.FieldLastQuery: pattern},
			bson.M{domain.FieldLastResponse: pattern},
		},
	}
	if sessionID != "" {
		filter[domain.FieldSessionID] = sessionID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: domain.FieldUpdatedAt, Value: -1}}).
		SetLimit(searchLimit)

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "search contexts", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.PersistenceError{Op: "search contexts", Err: err}
	}

	results := make([]domain.ContextDocument, 0, len(docs))
	for _, d := range docs {
		results = append(results, normalizeDocument(d))
	}
	return results, nil
}

// DeleteContext removes the session's context, conversation turns and
// preferences. Each delete runs independently so a failure in one collection
// does not stop the others.
func (r *ContextRepository) DeleteContext(ctx context.Context, sessionID string) error {
	db, err := r.client.Connect(ctx)
	if err != nil {
		return &domain.PersistenceError{Op: "clear context", Err: err}
	}

	filter := bson.M{domain.FieldSessionID: sessionID}
	var errs []error
	for _, name := range []string{contextsCollection, conversationsCollection, preferencesCollection} {
		if _, err := db.Collection(name).DeleteMany(ctx, filter); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &domain.PersistenceError{Op: "clear context", Err: errors.Join(errs...)}
	}
	return nil
}

// Ping verifies the store is reachable.
func (r *ContextRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// normalizeDocument converts BSON decoding artifacts back to plain Go values
// so callers and JSON encoding see time.Time and maps, not driver types.
func normalizeDocument(doc bson.M) domain.ContextDocument {
	out := make(domain.ContextDocument, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		arr := make([]any, len(t))
		for i, e := range t {
			arr[i] = normalizeValue(e)
		}
		return arr
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalizeValue(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	default:
		return v
	}
}

// escapeRegex quotes regex metacharacters so user input matches literally.
func escapeRegex(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
