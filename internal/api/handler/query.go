package handler

import (
	"encoding/json"
	"net/http"

	"github.com/swirlhq/aio-assistant/internal/api/middleware"
	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// QueryHandler serves the simplified ask-a-question contract.
type QueryHandler struct {
	dispatcher Executor
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(dispatcher Executor) *QueryHandler {
	return &QueryHandler{dispatcher: dispatcher}
}

type queryRequest struct {
	Query           string `json:"query"`
	CurrentLocation string `json:"currentLocation"`
}

// Ask handles POST /query: `{query, currentLocation?}` with the session id
// carried out-of-band; returns the flat result object whose field names
// downstream renderers match on.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing session id")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := map[string]any{"query": req.Query}
	if req.CurrentLocation != "" {
		params["currentLocation"] = req.CurrentLocation
	}

	outcome, err := h.dispatcher.Execute(r.Context(), string(domain.MethodQuery), params, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, outcome.Result)
}
