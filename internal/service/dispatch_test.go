package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/swirlhq/aio-assistant/internal/assistant"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

const testSession = "sess-1"

func newTestDispatcher() (*Dispatcher, *MockContextRepository, *MockSessionStore, *MockAssistant) {
	repo := new(MockContextRepository)
	sessions := new(MockSessionStore)
	asst := new(MockAssistant)
	return NewDispatcher(repo, sessions, asst), repo, sessions, asst
}

func expectSession(sessions *MockSessionStore) {
	sessions.On("Get", mock.Anything, testSession).Return(domain.Credential{"access_token": "tok"}, nil)
}

func expectSnapshot(repo *MockContextRepository, doc domain.ContextDocument, history []domain.ConversationTurn, prefs map[string]any) {
	if doc == nil {
		repo.On("GetContext", mock.Anything, testSession).Return(nil, nil)
	} else {
		repo.On("GetContext", mock.Anything, testSession).Return(doc, nil)
	}
	repo.On("GetConversationHistory", mock.Anything, testSession, snapshotHistoryLimit).Return(history, nil)
	repo.On("GetUserPreferences", mock.Anything, testSession).Return(prefs, nil)
}

func TestExecute_RequiresSession(t *testing.T) {
	d, _, sessions, _ := newTestDispatcher()
	ctx := context.Background()

	t.Run("missing session id", func(t *testing.T) {
		_, err := d.Execute(ctx, "query", map[string]any{"query": "hi"}, "")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "sessionId", verr.Param)
	})

	t.Run("unknown session", func(t *testing.T) {
		sessions.On("Get", mock.Anything, "nope").Return(nil, domain.ErrSessionNotFound)

		_, err := d.Execute(ctx, "query", map[string]any{"query": "hi"}, "nope")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestExecute_UnknownMethodLeavesStateUntouched(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)

	_, err := d.Execute(context.Background(), "drop_everything", nil, testSession)
	assert.ErrorIs(t, err, domain.ErrUnknownMethod)

	repo.AssertNotCalled(t, "SaveContext", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AddConversationTurn", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteContext", mock.Anything, mock.Anything)
}

func TestExecute_Query(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)

	history := []domain.ConversationTurn{
		{SessionID: testSession, Role: domain.RoleUser, Content: "earlier"},
		{SessionID: testSession, Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	prefs := map[string]any{"tone": "formal"}
	doc := domain.ContextDocument{
		domain.FieldSessionID:         testSession,
		domain.FieldCurrentLocation:   "Berlin",
		domain.FieldConversationCount: int32(4),
	}
	expectSnapshot(repo, doc, history, prefs)

	result := &domain.QueryResult{
		Type:    "calendar",
		Content: "You have two meetings.",
		Events:  []any{map[string]any{"summary": "standup"}},
	}
	asst.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(req assistant.Request) bool {
		return req.Query == "what is on today" &&
			req.Location == "Berlin" &&
			len(req.History) == 2 &&
			req.Preferences["tone"] == "formal"
	})).Return(result, nil)

	repo.On("AddConversationTurn", mock.Anything, mock.MatchedBy(func(turn domain.ConversationTurn) bool {
		return turn.Role == domain.RoleUser && turn.Content == "what is on today"
	})).Return(nil)
	repo.On("AddConversationTurn", mock.Anything, mock.MatchedBy(func(turn domain.ConversationTurn) bool {
		return turn.Role == domain.RoleAssistant && turn.Content == result.Content && turn.Metadata == result
	})).Return(nil)

	var saved map[string]any
	repo.On("SaveContext", mock.Anything, testSession, mock.MatchedBy(func(fields map[string]any) bool {
		saved = fields
		return true
	})).Return(nil)

	outcome, err := d.Execute(context.Background(), "query", map[string]any{"query": "what is on today"}, testSession)
	assert.NoError(t, err)
	assert.Equal(t, result, outcome.Result)

	// Envelope reflects the pre-dispatch snapshot, not the turns just written.
	assert.True(t, outcome.Context.HasHistory)
	assert.Equal(t, 2, outcome.Context.HistoryCount)
	assert.Equal(t, prefs, outcome.Context.Preferences)

	// conversationCount is snapshot count + 1.
	assert.Equal(t, 5, saved[domain.FieldConversationCount])
	assert.Equal(t, "what is on today", saved[domain.FieldLastQuery])
	assert.Equal(t, result.Content, saved[domain.FieldLastResponse])
	assert.Equal(t, result.Events, saved["lastEvents"])

	// Fields absent from this turn's result are overwritten with null.
	v, present := saved["lastTasks"]
	assert.True(t, present)
	assert.Nil(t, v)

	repo.AssertExpectations(t)
	asst.AssertExpectations(t)
}

func TestExecute_QueryCarriesContextSnapshot(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)

	doc := domain.ContextDocument{
		domain.FieldSessionID:    testSession,
		domain.FieldLastResponse: "Three meetings tomorrow.",
		"lastEvents":             []any{map[string]any{"summary": "quarterly review"}},
	}
	expectSnapshot(repo, doc, nil, map[string]any{})

	var captured assistant.Request
	asst.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(req assistant.Request) bool {
		captured = req
		return true
	})).Return(&domain.QueryResult{Content: "The review is at 10am."}, nil)

	repo.On("AddConversationTurn", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveContext", mock.Anything, testSession, mock.Anything).Return(nil)

	_, err := d.Execute(context.Background(), "query", map[string]any{"query": "when is the review"}, testSession)
	assert.NoError(t, err)

	// The assistant sees the stored context document, so follow-ups can
	// resolve against lastEvents and lastResponse.
	assert.Equal(t, doc, captured.Context)

	prompt := assistant.BuildPrompt(captured)
	assert.Contains(t, prompt, "Three meetings tomorrow.")
	assert.Contains(t, prompt, "quarterly review")
}

func TestExecute_QueryFromEmptyBaseline(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	asst.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(&domain.QueryResult{Content: "hello"}, nil)
	repo.On("AddConversationTurn", mock.Anything, mock.Anything).Return(nil)

	var saved map[string]any
	repo.On("SaveContext", mock.Anything, testSession, mock.MatchedBy(func(fields map[string]any) bool {
		saved = fields
		return true
	})).Return(nil)

	outcome, err := d.Execute(context.Background(), "query", map[string]any{"query": "hi"}, testSession)
	assert.NoError(t, err)
	assert.Equal(t, 1, saved[domain.FieldConversationCount])
	assert.False(t, outcome.Context.HasHistory)
	assert.Equal(t, 0, outcome.Context.HistoryCount)
}

func TestExecute_QueryPersistenceIsBestEffort(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)

	storeDown := &domain.PersistenceError{Op: "get context", Err: errors.New("mongo down")}
	repo.On("GetContext", mock.Anything, testSession).Return(nil, storeDown)
	repo.On("GetConversationHistory", mock.Anything, testSession, snapshotHistoryLimit).Return(nil, storeDown)
	repo.On("GetUserPreferences", mock.Anything, testSession).Return(nil, storeDown)
	repo.On("AddConversationTurn", mock.Anything, mock.Anything).Return(storeDown)
	repo.On("SaveContext", mock.Anything, testSession, mock.Anything).Return(storeDown)

	asst.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(&domain.QueryResult{Content: "still answering"}, nil)

	outcome, err := d.Execute(context.Background(), "query", map[string]any{"query": "hi"}, testSession)
	assert.NoError(t, err)
	assert.Equal(t, "still answering", outcome.Result.(*domain.QueryResult).Content)
	assert.False(t, outcome.Context.HasHistory)
}

func TestExecute_QueryAssistantFailure(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	repo.On("AddConversationTurn", mock.Anything, mock.Anything).Return(nil)
	asst.On("ProcessQuery", mock.Anything, mock.Anything).Return(nil, errors.New("model overloaded"))

	_, err := d.Execute(context.Background(), "query", map[string]any{"query": "hi"}, testSession)

	var uerr *domain.UpstreamError
	assert.ErrorAs(t, err, &uerr)
	assert.Equal(t, "assistant", uerr.Collaborator)

	repo.AssertNotCalled(t, "SaveContext", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_QueryMissingParam(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	_, err := d.Execute(context.Background(), "query", map[string]any{}, testSession)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "query", verr.Param)
}

func TestExecute_SaveAndGetPreference(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	repo.On("SaveUserPreference", mock.Anything, testSession, "tone", "formal").Return(nil)

	outcome, err := d.Execute(context.Background(), "save_preference",
		map[string]any{"key": "tone", "value": "formal"}, testSession)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true, "key": "tone"}, outcome.Result)

	// get_preferences returns the stored mapping. The snapshot mock already
	// answers GetUserPreferences; override the stored state for the read.
	repo.ExpectedCalls = nil
	expectSnapshot(repo, nil, nil, map[string]any{"tone": "formal"})
	repo.On("GetUserPreferences", mock.Anything, testSession).Return(map[string]any{"tone": "formal"}, nil)

	outcome, err = d.Execute(context.Background(), "get_preferences", nil, testSession)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"tone": "formal"}, outcome.Result)
}

func TestExecute_SavePreferenceMissingKey(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	_, err := d.Execute(context.Background(), "save_preference", map[string]any{"value": "x"}, testSession)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "key", verr.Param)
}

func TestExecute_SaveContextSurfacesPersistenceError(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	storeDown := &domain.PersistenceError{Op: "save context", Err: errors.New("mongo down")}
	repo.On("SaveContext", mock.Anything, testSession, mock.Anything).Return(storeDown)

	_, err := d.Execute(context.Background(), "save_context",
		map[string]any{"context": map[string]any{"a": 1}}, testSession)

	var perr *domain.PersistenceError
	assert.ErrorAs(t, err, &perr)
}

func TestExecute_GetContext(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)

	t.Run("absent context yields empty document", func(t *testing.T) {
		expectSnapshot(repo, nil, nil, map[string]any{})

		outcome, err := d.Execute(context.Background(), "get_context", nil, testSession)
		assert.NoError(t, err)
		assert.Equal(t, domain.ContextDocument{}, outcome.Result)
	})
}

func TestExecute_GetConversationHistoryDefaultLimit(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	turns := []domain.ConversationTurn{{SessionID: testSession, Role: domain.RoleUser, Content: "hi"}}
	repo.On("GetConversationHistory", mock.Anything, testSession, defaultHistoryLimit).Return(turns, nil)

	outcome, err := d.Execute(context.Background(), "get_conversation_history", nil, testSession)
	assert.NoError(t, err)
	assert.Equal(t, turns, outcome.Result)
}

func TestExecute_SearchContextRequiresQuery(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	_, err := d.Execute(context.Background(), "search_context", nil, testSession)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "query", verr.Param)
}

func TestExecute_UpdateLocation(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	repo.On("SaveContext", mock.Anything, testSession, mock.MatchedBy(func(fields map[string]any) bool {
		_, stamped := fields[domain.FieldLocationUpdatedAt]
		return fields[domain.FieldCurrentLocation] == "Lisbon" && stamped
	})).Return(nil)

	outcome, err := d.Execute(context.Background(), "update_location",
		map[string]any{"location": "Lisbon"}, testSession)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true, "location": "Lisbon"}, outcome.Result)
	repo.AssertExpectations(t)
}

func TestExecute_ClearContext(t *testing.T) {
	d, repo, sessions, _ := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	repo.On("DeleteContext", mock.Anything, testSession).Return(nil)
	sessions.On("Delete", mock.Anything, testSession).Return(nil)

	outcome, err := d.Execute(context.Background(), "clear_context", nil, testSession)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true}, outcome.Result)
	repo.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestExecute_TravelTime(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)

	t.Run("composed from origin and destination", func(t *testing.T) {
		expectSnapshot(repo, domain.ContextDocument{domain.FieldCurrentLocation: "Berlin"}, nil, map[string]any{})

		result := &domain.QueryResult{Content: "About 20 minutes."}
		asst.On("TravelQuery", mock.Anything, "travel time from home to work", "Berlin").Return(result, nil)
		repo.On("SaveContext", mock.Anything, testSession, mock.Anything).Return(nil)

		outcome, err := d.Execute(context.Background(), "get_travel_time",
			map[string]any{"origin": "home", "destination": "work"}, testSession)
		assert.NoError(t, err)
		assert.Equal(t, result, outcome.Result)
	})

	t.Run("missing everything", func(t *testing.T) {
		_, err := d.Execute(context.Background(), "get_travel_time", nil, testSession)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestExecute_Schedule(t *testing.T) {
	d, repo, sessions, asst := newTestDispatcher()
	expectSession(sessions)
	expectSnapshot(repo, nil, nil, map[string]any{})

	result := &domain.QueryResult{Content: "Free all day."}
	asst.On("ScheduleQuery", mock.Anything, "get schedule").Return(result, nil)
	repo.On("SaveContext", mock.Anything, testSession, mock.Anything).Return(nil)

	outcome, err := d.Execute(context.Background(), "get_schedule", nil, testSession)
	assert.NoError(t, err)
	assert.Equal(t, result, outcome.Result)
	assert.Nil(t, outcome.Context)
}

func TestAuthService_Callback(t *testing.T) {
	exchanger := new(MockTokenExchanger)
	sessions := new(MockSessionStore)
	svc := NewAuthService(exchanger, sessions)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		cred := domain.Credential{"access_token": "tok"}
		exchanger.On("Exchange", ctx, "code-1").Return(cred, nil)
		sessions.On("Set", ctx, mock.AnythingOfType("string"), cred).Return(nil)

		sessionID, err := svc.Callback(ctx, "code-1")
		assert.NoError(t, err)
		assert.NotEmpty(t, sessionID)
		sessions.AssertExpectations(t)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := svc.Callback(ctx, "")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("exchange failure", func(t *testing.T) {
		exchanger.On("Exchange", ctx, "bad-code").Return(nil, errors.New("invalid_grant"))

		_, err := svc.Callback(ctx, "bad-code")
		var uerr *domain.UpstreamError
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "oauth", uerr.Collaborator)
	})
}
