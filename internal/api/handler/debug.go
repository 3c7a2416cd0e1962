package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// DebugHandler exposes a read-only view of a session's stored state.
type DebugHandler struct {
	repo domain.ContextRepository
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(repo domain.ContextRepository) *DebugHandler {
	return &DebugHandler{repo: repo}
}

// Context handles GET /debug/context/{sessionID}.
func (h *DebugHandler) Context(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	doc, err := h.repo.GetContext(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	history, err := h.repo.GetConversationHistory(r.Context(), sessionID, 50)
	if err != nil {
		response.FromError(w, err)
		return
	}
	prefs, err := h.repo.GetUserPreferences(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"sessionId":    sessionID,
		"context":      doc,
		"historyCount": len(history),
		"history":      history,
		"preferences":  prefs,
		"collections": map[string]bool{
			"hasContext":     doc != nil,
			"hasHistory":     len(history) > 0,
			"hasPreferences": len(prefs) > 0,
		},
	})
}
