package handler

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/swirlhq/aio-assistant/internal/api/middleware"
	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/service"
)

// AuthHandler serves the OAuth login flow.
type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

// Login returns the consent URL for the front-end to open.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"authUrl": h.authService.LoginURL(r.URL.Query().Get("state")),
	})
}

// Callback finishes the OAuth flow and redirects to the front-end carrying
// the new session id.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	sessionID, err := h.authService.Callback(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("OAuth callback failed")
		response.FromError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s?session=%s", h.frontendURL, sessionID), http.StatusFound)
}

// Logout drops the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing session id")
		return
	}

	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"success": true})
}
