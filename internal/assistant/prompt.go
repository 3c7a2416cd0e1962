package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

// BuildPrompt creates the grounding prompt for a query. The stored context,
// history and preferences are inlined so the model can resolve follow-ups
// like "what about tomorrow" against lastEvents or lastResponse without tool
// access.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(`You are a personal assistant. Answer the user's request and respond with a single JSON object.

Rules:
1. Respond with ONLY the JSON object, no explanations or markdown
2. Always include a "content" string with the answer text
3. Optionally set "type" to classify the answer (calendar, travel, weather, general, ...)
4. Use the structured keys only when you have structured data for them:
   "events", "travelTimes", "link", "contacts", "tasks", "meeting", "files",
   "notes", "messages", "videos", "weather", "forecasts", "places",
   "timezone", "forms", "results", "playlists"
5. Never invent structured data; omit a key rather than guessing
`)

	if req.Location != "" {
		fmt.Fprintf(&b, "\nThe user's current location is %s.\n", req.Location)
	}

	if len(req.Context) > 0 {
		var rendered bool
		for key, value := range req.Context {
			if value == nil || skipContextField(key) {
				continue
			}
			data, err := json.Marshal(value)
			if err != nil {
				continue
			}
			if !rendered {
				b.WriteString("\nContext from earlier in this session:\n")
				rendered = true
			}
			fmt.Fprintf(&b, "- %s: %s\n", key, data)
		}
	}

	if len(req.Preferences) > 0 {
		b.WriteString("\nUser preferences:\n")
		for key, value := range req.Preferences {
			fmt.Fprintf(&b, "- %s: %v\n", key, value)
		}
	}

	if len(req.History) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser request: %s\n\nJSON:", req.Query)
	return b.String()
}

// skipContextField filters bookkeeping fields out of the rendered context.
// Only result-bearing fields help the model; the location is rendered by its
// own section.
func skipContextField(key string) bool {
	switch key {
	case domain.FieldSessionID, domain.FieldCreatedAt, domain.FieldUpdatedAt,
		domain.FieldLastUpdated, domain.FieldConversationCount,
		domain.FieldCurrentLocation, domain.FieldLocationUpdatedAt:
		return true
	}
	return false
}

// ExtractJSON pulls the JSON object out of a model response, stripping
// markdown code fences when present.
func ExtractJSON(content string) string {
	if body := extractFromCodeBlock(content, "```json"); body != "" {
		return body
	}
	if body := extractFromCodeBlock(content, "```"); body != "" {
		return body
	}

	// Fall back to the outermost braces; models sometimes prepend prose.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		return strings.TrimSpace(content[start : end+1])
	}

	return strings.TrimSpace(content)
}

func extractFromCodeBlock(content, startMarker string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return ""
	}

	bodyStart := startIdx + len(startMarker)
	if bodyStart < len(content) && content[bodyStart] == '\n' {
		bodyStart++
	}

	endIdx := strings.Index(content[bodyStart:], "```")
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(content[bodyStart : bodyStart+endIdx])
}
