package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/service"
)

// Executor runs one command for a session.
type Executor interface {
	Execute(ctx context.Context, method string, params map[string]any, sessionID string) (*service.Outcome, error)
}

// CommandHandler serves the command protocol endpoint.
type CommandHandler struct {
	dispatcher Executor
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(dispatcher Executor) *CommandHandler {
	return &CommandHandler{dispatcher: dispatcher}
}

type commandRequest struct {
	Method    string         `json:"method"`
	Params    map[string]any `json:"params"`
	SessionID string         `json:"sessionId"`
}

// Execute handles POST /execute: `{method, params, sessionId}` in,
// `{result, context?}` or `{error}` out.
func (h *CommandHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		response.Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	outcome, err := h.dispatcher.Execute(r.Context(), req.Method, req.Params, req.SessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if outcome.Context != nil {
		response.Result(w, outcome.Result, outcome.Context)
		return
	}
	response.Result(w, outcome.Result, nil)
}
