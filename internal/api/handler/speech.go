package handler

import (
	"encoding/json"
	"net/http"

	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/speech"
)

// SpeechHandler serves text-to-speech synthesis.
type SpeechHandler struct {
	synthesizer speech.Synthesizer
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(synthesizer speech.Synthesizer) *SpeechHandler {
	return &SpeechHandler{synthesizer: synthesizer}
}

type speechRequest struct {
	Text string `json:"text"`
}

// Synthesize handles POST /speech/tts, streaming the audio back. Without a
// configured backend it answers 503.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		response.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, mimeType, err := h.synthesizer.Synthesize(r.Context(), req.Text)
	if err != nil {
		response.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// Status reports whether synthesis is available.
func (h *SpeechHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"available": h.synthesizer.IsConfigured(),
	})
}
