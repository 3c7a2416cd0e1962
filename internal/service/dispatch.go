package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swirlhq/aio-assistant/internal/assistant"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

const (
	snapshotHistoryLimit = 10
	defaultHistoryLimit  = 50
)

// ContextInfo reports conversation state as it was before the command ran.
// The caller observes the session as of the pre-dispatch snapshot, not the
// turns this command recorded.
type ContextInfo struct {
	HasHistory   bool           `json:"hasHistory"`
	HistoryCount int            `json:"historyCount"`
	Preferences  map[string]any `json:"preferences"`
}

// Outcome is a dispatched command's result plus, for query commands, the
// pre-dispatch context info.
type Outcome struct {
	Result  any
	Context *ContextInfo
}

// snapshot is the read state taken before any mutation for a command.
type snapshot struct {
	context     domain.ContextDocument
	history     []domain.ConversationTurn
	preferences map[string]any
}

// Dispatcher routes command envelopes to their handlers. It owns the decision
// of what context each command may read and must write.
type Dispatcher struct {
	repo      domain.ContextRepository
	sessions  domain.SessionStore
	assistant assistant.Assistant
	validate  *validator.Validate
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(repo domain.ContextRepository, sessions domain.SessionStore, asst assistant.Assistant) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		sessions:  sessions,
		assistant: asst,
		validate:  validator.New(),
	}
}

type queryParams struct {
	Query           string `json:"query" validate:"required"`
	CurrentLocation string `json:"currentLocation"`
}

type scheduleParams struct {
	Query string `json:"query"`
}

type travelParams struct {
	Query       string `json:"query"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type saveContextParams struct {
	Context map[string]any `json:"context"`
}

type historyParams struct {
	Limit int `json:"limit"`
}

type preferenceParams struct {
	Key   string `json:"key" validate:"required"`
	Value any    `json:"value"`
}

type searchParams struct {
	Query string `json:"query" validate:"required"`
}

type locationParams struct {
	Location string `json:"location" validate:"required"`
}

// Execute runs one command for a session. The session must hold a credential;
// the method must be part of the closed protocol set.
func (d *Dispatcher) Execute(ctx context.Context, method string, params map[string]any, sessionID string) (*Outcome, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("sessionId")
	}

	if _, err := d.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	m, err := domain.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	snap := d.loadSnapshot(ctx, sessionID)

	switch m {
	case domain.MethodQuery:
		var p queryParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		return d.handleQuery(ctx, sessionID, snap, p)

	case domain.MethodGetSchedule:
		var p scheduleParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		return d.handleSchedule(ctx, sessionID, p)

	case domain.MethodGetTravelTime:
		var p travelParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		return d.handleTravelTime(ctx, sessionID, snap, p)

	case domain.MethodSaveContext:
		var p saveContextParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		if err := d.repo.SaveContext(ctx, sessionID, p.Context); err != nil {
			return nil, err
		}
		return &Outcome{Result: map[string]any{"success": true}}, nil

	case domain.MethodGetContext:
		doc, err := d.repo.GetContext(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			doc = domain.ContextDocument{}
		}
		return &Outcome{Result: doc}, nil

	case domain.MethodGetConversationHistory:
		var p historyParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		if p.Limit <= 0 {
			p.Limit = defaultHistoryLimit
		}
		turns, err := d.repo.GetConversationHistory(ctx, sessionID, p.Limit)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: turns}, nil

	case domain.MethodSavePreference:
		var p preferenceParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		if err := d.repo.SaveUserPreference(ctx, sessionID, p.Key, p.Value); err != nil {
			return nil, err
		}
		return &Outcome{Result: map[string]any{"success": true, "key": p.Key}}, nil

	case domain.MethodGetPreferences:
		prefs, err := d.repo.GetUserPreferences(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: prefs}, nil

	case domain.MethodSearchContext:
		var p searchParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		docs, err := d.repo.SearchContexts(ctx, p.Query, sessionID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: docs}, nil

	case domain.MethodUpdateLocation:
		var p locationParams
		if err := d.decode(params, &p); err != nil {
			return nil, err
		}
		fields := map[string]any{
			domain.FieldCurrentLocation:   p.Location,
			domain.FieldLocationUpdatedAt: time.Now().UTC(),
		}
		if err := d.repo.SaveContext(ctx, sessionID, fields); err != nil {
			return nil, err
		}
		return &Outcome{Result: map[string]any{"success": true, "location": p.Location}}, nil

	case domain.MethodClearContext:
		return d.handleClearContext(ctx, sessionID)

	default:
		// ParseMethod already rejected anything outside the protocol set.
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, method)
	}
}

// handleQuery runs the full conversational path: record the user turn, ask
// the assistant against the pre-dispatch snapshot, record the assistant turn,
// then overwrite the last* context fields. All persistence on this path is
// best-effort; only an assistant failure aborts the response.
func (d *Dispatcher) handleQuery(ctx context.Context, sessionID string, snap snapshot, p queryParams) (*Outcome, error) {
	d.appendTurn(ctx, domain.ConversationTurn{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   p.Query,
		Method:    domain.MethodQuery,
	})

	location := p.CurrentLocation
	if location == "" {
		location = snap.context.CurrentLocation()
	}

	result, err := d.assistant.ProcessQuery(ctx, assistant.Request{
		Query:       p.Query,
		Location:    location,
		Context:     snap.context,
		History:     snap.history,
		Preferences: snap.preferences,
	})
	if err != nil {
		return nil, &domain.UpstreamError{Collaborator: "assistant", Err: err}
	}

	d.appendTurn(ctx, domain.ConversationTurn{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   result.Content,
		Method:    domain.MethodQuery,
		Metadata:  result,
	})

	fields := queryContextFields(p.Query, result, snap.context.ConversationCount()+1)
	if err := d.repo.SaveContext(ctx, sessionID, fields); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save query context")
	}

	return &Outcome{
		Result: result,
		Context: &ContextInfo{
			HasHistory:   len(snap.history) > 0,
			HistoryCount: len(snap.history),
			Preferences:  snap.preferences,
		},
	}, nil
}

func (d *Dispatcher) handleSchedule(ctx context.Context, sessionID string, p scheduleParams) (*Outcome, error) {
	query := p.Query
	if query == "" {
		query = "get schedule"
	}

	result, err := d.assistant.ScheduleQuery(ctx, query)
	if err != nil {
		return nil, &domain.UpstreamError{Collaborator: "assistant", Err: err}
	}

	fields := map[string]any{
		"lastSchedule":          result,
		domain.FieldLastQuery:   string(domain.MethodGetSchedule),
		domain.FieldLastUpdated: time.Now().UTC(),
	}
	if err := d.repo.SaveContext(ctx, sessionID, fields); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save schedule context")
	}

	return &Outcome{Result: result}, nil
}

func (d *Dispatcher) handleTravelTime(ctx context.Context, sessionID string, snap snapshot, p travelParams) (*Outcome, error) {
	query := p.Query
	if query == "" {
		if p.Origin == "" || p.Destination == "" {
			return nil, &domain.ValidationError{Param: "query", Reason: "query or origin+destination is required"}
		}
		query = fmt.Sprintf("travel time from %s to %s", p.Origin, p.Destination)
	}

	result, err := d.assistant.TravelQuery(ctx, query, snap.context.CurrentLocation())
	if err != nil {
		return nil, &domain.UpstreamError{Collaborator: "assistant", Err: err}
	}

	fields := map[string]any{
		"lastTravelTime":        result,
		domain.FieldLastQuery:   string(domain.MethodGetTravelTime),
		domain.FieldLastUpdated: time.Now().UTC(),
	}
	if err := d.repo.SaveContext(ctx, sessionID, fields); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save travel context")
	}

	return &Outcome{Result: result}, nil
}

// handleClearContext removes the session's stored data and its credential.
// The deletes are independent; a failed store delete is surfaced while the
// credential delete stays best-effort.
func (d *Dispatcher) handleClearContext(ctx context.Context, sessionID string) (*Outcome, error) {
	if err := d.repo.DeleteContext(ctx, sessionID); err != nil {
		return nil, err
	}

	if err := d.sessions.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete session credential")
	}

	return &Outcome{Result: map[string]any{"success": true}}, nil
}

// loadSnapshot reads context, recent history and preferences before any
// mutation. Failures degrade to empty values; a store outage must not block
// the command itself.
func (d *Dispatcher) loadSnapshot(ctx context.Context, sessionID string) snapshot {
	snap := snapshot{
		context:     domain.ContextDocument{},
		preferences: map[string]any{},
	}

	if doc, err := d.repo.GetContext(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load context snapshot")
	} else if doc != nil {
		snap.context = doc
	}

	if history, err := d.repo.GetConversationHistory(ctx, sessionID, snapshotHistoryLimit); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load history snapshot")
	} else {
		snap.history = history
	}

	if prefs, err := d.repo.GetUserPreferences(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load preference snapshot")
	} else if prefs != nil {
		snap.preferences = prefs
	}

	return snap
}

func (d *Dispatcher) appendTurn(ctx context.Context, turn domain.ConversationTurn) {
	if err := d.repo.AddConversationTurn(ctx, turn); err != nil {
		log.Warn().Err(err).
			Str("session_id", turn.SessionID).
			Str("role", string(turn.Role)).
			Msg("failed to record conversation turn")
	}
}

// queryContextFields is the fixed last* field set a query dispatch writes.
// Fields the result did not produce this turn are written as null on purpose,
// so stale values from earlier turns cannot leak into later prompts.
func queryContextFields(query string, result *domain.QueryResult, conversationCount int) map[string]any {
	return map[string]any{
		domain.FieldLastQuery:        query,
		domain.FieldLastResponse:     result.Content,
		"lastEvents":                 result.Events,
		"lastTravelTimes":            result.TravelTimes,
		"lastMeeting":                result.Meeting,
		"lastTasks":                  result.Tasks,
		"lastFiles":                  result.Files,
		"lastContacts":               result.Contacts,
		"lastMessages":               result.Messages,
		"lastVideos":                 result.Videos,
		"lastWeather":                result.Weather,
		"lastForecasts":              result.Forecasts,
		"lastPlaces":                 result.Places,
		"lastTimezone":               result.Timezone,
		"lastForms":                  result.Forms,
		"lastResults":                result.Results,
		"lastPlaylists":              result.Playlists,
		domain.FieldConversationCount: conversationCount,
		domain.FieldLastUpdated:       time.Now().UTC(),
	}
}

// decode maps wire params onto a typed parameter struct and validates it.
func (d *Dispatcher) decode(params map[string]any, dst any) error {
	if params == nil {
		params = map[string]any{}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return &domain.ValidationError{Param: "params", Reason: "not serializable"}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &domain.ValidationError{Param: "params", Reason: "malformed"}
	}

	if err := d.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidationError(strings.ToLower(verrs[0].Field()))
		}
		return err
	}
	return nil
}
