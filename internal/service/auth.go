package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// TokenExchanger is the OAuth collaborator: it builds the consent URL and
// swaps an authorization code for a credential blob. The blob stays opaque to
// this service.
type TokenExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (domain.Credential, error)
}

// AuthService creates sessions from authorization callbacks.
type AuthService struct {
	exchanger TokenExchanger
	sessions  domain.SessionStore
}

// NewAuthService creates a new auth service
func NewAuthService(exchanger TokenExchanger, sessions domain.SessionStore) *AuthService {
	return &AuthService{
		exchanger: exchanger,
		sessions:  sessions,
	}
}

// LoginURL returns the consent URL to redirect the user to.
func (s *AuthService) LoginURL(state string) string {
	return s.exchanger.AuthURL(state)
}

// Callback exchanges the authorization code, mints an opaque session id and
// stores the credential under it. The session id is what every later command
// authenticates with.
func (s *AuthService) Callback(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", domain.NewValidationError("code")
	}

	cred, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return "", &domain.UpstreamError{Collaborator: "oauth", Err: err}
	}

	sessionID := uuid.New().String()
	if err := s.sessions.Set(ctx, sessionID, cred); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().Str("session_id", sessionID).Msg("session created")
	return sessionID, nil
}

// Logout drops the session's credential.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
