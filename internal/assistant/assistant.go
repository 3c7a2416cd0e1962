package assistant

import (
	"context"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// Request carries a user query plus the session context the model answers
// against.
type Request struct {
	Query       string
	Location    string
	Context     domain.ContextDocument
	History     []domain.ConversationTurn
	Preferences map[string]any
}

// Assistant turns a natural-language query into a flat result the front-end
// can render.
type Assistant interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if the provider has valid credentials
	IsConfigured() bool

	// ProcessQuery answers the query, using the stored context, history
	// and preferences as grounding. The returned result always carries
	// Content.
	ProcessQuery(ctx context.Context, req Request) (*domain.QueryResult, error)

	// ScheduleQuery answers a calendar-focused query.
	ScheduleQuery(ctx context.Context, query string) (*domain.QueryResult, error)

	// TravelQuery answers a travel-time query, resolving relative origins
	// ("from here") against the given location.
	TravelQuery(ctx context.Context, query, location string) (*domain.QueryResult, error)
}
