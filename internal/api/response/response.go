package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// Envelope is the command protocol's success shape.
type Envelope struct {
	Result  any `json:"result"`
	Context any `json:"context,omitempty"`
}

// ErrorBody is the command protocol's failure shape.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends a raw JSON response
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Result sends a command result envelope. ctx may be nil; it is omitted from
// the body when it is.
func Result(w http.ResponseWriter, result, ctx any) {
	JSON(w, http.StatusOK, Envelope{Result: result, Context: ctx})
}

// OK sends a plain 200 payload without the envelope.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Error sends an error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// FromError maps a domain error to its wire status: auth 401, validation and
// unknown method 400, speech unavailable 503, everything else 500.
func FromError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		Error(w, http.StatusUnauthorized, "Invalid session")
	case errors.As(err, &verr):
		Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrUnknownMethod):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSpeechUnavailable):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
