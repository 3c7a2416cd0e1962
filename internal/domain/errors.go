package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means no credential is stored for the session id.
	ErrSessionNotFound = errors.New("invalid session")

	// ErrUnknownMethod means the command method is not part of the protocol.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrSpeechUnavailable means no text-to-speech backend is configured.
	ErrSpeechUnavailable = errors.New("text-to-speech not available")
)

// ValidationError reports a missing or malformed command parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Param)
}

// NewValidationError creates a ValidationError for a missing parameter.
func NewValidationError(param string) *ValidationError {
	return &ValidationError{Param: param}
}

// PersistenceError wraps a backing-store failure. The command path decides
// whether it is fatal (explicit context commands) or best-effort enrichment
// (the query path, where it is logged and swallowed).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UpstreamError wraps a collaborator failure (assistant, maps, speech).
type UpstreamError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConnectionKind classifies a store connection failure.
type ConnectionKind string

const (
	ConnectionAuth    ConnectionKind = "auth"
	ConnectionNetwork ConnectionKind = "network"
	ConnectionTimeout ConnectionKind = "timeout"
	ConnectionUnknown ConnectionKind = "unknown"
)

// ConnectionError carries an actionable diagnosis of a failed store
// connection attempt.
type ConnectionError struct {
	Kind ConnectionKind
	Hint string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection failed (%s): %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
