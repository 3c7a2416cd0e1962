package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/swirlhq/aio-assistant/internal/assistant"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// MockContextRepository mocks domain.ContextRepository
type MockContextRepository struct {
	mock.Mock
}

func (m *MockContextRepository) SaveContext(ctx context.Context, sessionID string, fields map[string]any) error {
	args := m.Called(ctx, sessionID, fields)
	return args.Error(0)
}

func (m *MockContextRepository) GetContext(ctx context.Context, sessionID string) (domain.ContextDocument, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.ContextDocument), args.Error(1)
}

func (m *MockContextRepository) AddConversationTurn(ctx context.Context, turn domain.ConversationTurn) error {
	args := m.Called(ctx, turn)
	return args.Error(0)
}

func (m *MockContextRepository) GetConversationHistory(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationTurn), args.Error(1)
}

func (m *MockContextRepository) SaveUserPreference(ctx context.Context, sessionID, key string, value any) error {
	args := m.Called(ctx, sessionID, key, value)
	return args.Error(0)
}

func (m *MockContextRepository) GetUserPreferences(ctx context.Context, sessionID string) (map[string]any, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockContextRepository) SearchContexts(ctx context.Context, query, sessionID string) ([]domain.ContextDocument, error) {
	args := m.Called(ctx, query, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContextDocument), args.Error(1)
}

func (m *MockContextRepository) DeleteContext(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockContextRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionStore mocks domain.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (domain.Credential, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Credential), args.Error(1)
}

func (m *MockSessionStore) Set(ctx context.Context, sessionID string, cred domain.Credential) error {
	args := m.Called(ctx, sessionID, cred)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockAssistant mocks assistant.Assistant
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAssistant) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAssistant) ProcessQuery(ctx context.Context, req assistant.Request) (*domain.QueryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func (m *MockAssistant) ScheduleQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func (m *MockAssistant) TravelQuery(ctx context.Context, query, location string) (*domain.QueryResult, error) {
	args := m.Called(ctx, query, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

// MockTokenExchanger mocks TokenExchanger
type MockTokenExchanger struct {
	mock.Mock
}

func (m *MockTokenExchanger) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockTokenExchanger) Exchange(ctx context.Context, code string) (domain.Credential, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Credential), args.Error(1)
}
