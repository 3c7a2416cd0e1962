package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/swirlhq/aio-assistant/internal/assistant"
	"github.com/swirlhq/aio-assistant/internal/config"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// Assistant answers queries with Gemini.
type Assistant struct {
	apiKey string
	model  string
}

func New(cfg config.GeminiConfig) *Assistant {
	return &Assistant{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (a *Assistant) Name() string {
	return "gemini"
}

func (a *Assistant) DefaultModel() string {
	if a.model != "" {
		return a.model
	}
	return "gemini-2.5-flash"
}

func (a *Assistant) IsConfigured() bool {
	return a.apiKey != ""
}

func (a *Assistant) ProcessQuery(ctx context.Context, req assistant.Request) (*domain.QueryResult, error) {
	return a.generate(ctx, assistant.BuildPrompt(req))
}

// ScheduleQuery narrows the prompt to calendar data; the result lands in the
// events key.
func (a *Assistant) ScheduleQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	req := assistant.Request{Query: "Calendar request, answer with the events key where possible: " + query}
	return a.generate(ctx, assistant.BuildPrompt(req))
}

// TravelQuery narrows the prompt to travel estimates; the result lands in the
// travelTimes key.
func (a *Assistant) TravelQuery(ctx context.Context, query, location string) (*domain.QueryResult, error) {
	req := assistant.Request{
		Query:    "Travel time request, answer with the travelTimes key where possible: " + query,
		Location: location,
	}
	return a.generate(ctx, assistant.BuildPrompt(req))
}

func (a *Assistant) generate(ctx context.Context, prompt string) (*domain.QueryResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("gemini assistant is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.DefaultModel())
	model.ResponseMIMEType = "application/json"

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	latency := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	log.Debug().
		Dur("latency", latency).
		Int("output_len", len(output)).
		Msg("Gemini query answered")

	return parseResult(output), nil
}

// parseResult decodes the model output into a structured result. Output that
// is not the expected JSON object is passed through verbatim as content.
func parseResult(output string) *domain.QueryResult {
	body := assistant.ExtractJSON(output)

	var result domain.QueryResult
	if err := json.Unmarshal([]byte(body), &result); err != nil || result.Content == "" {
		return &domain.QueryResult{Content: output}
	}
	return &result
}
