package speech

import (
	"context"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	// IsConfigured checks if the backend has valid credentials.
	IsConfigured() bool

	// Synthesize returns encoded audio for the text, plus its MIME type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// Disabled is the stand-in when no text-to-speech backend is configured.
// Callers get domain.ErrSpeechUnavailable instead of a startup failure.
type Disabled struct{}

func (Disabled) IsConfigured() bool { return false }

func (Disabled) Synthesize(context.Context, string) ([]byte, string, error) {
	return nil, "", domain.ErrSpeechUnavailable
}
