package domain

import "fmt"

// Method identifies a command in the dispatch protocol. The set is closed:
// wire input is checked once by ParseMethod and every parsed value has a
// handler.
type Method string

const (
	MethodQuery                  Method = "query"
	MethodGetSchedule            Method = "get_schedule"
	MethodGetTravelTime          Method = "get_travel_time"
	MethodSaveContext            Method = "save_context"
	MethodGetContext             Method = "get_context"
	MethodGetConversationHistory Method = "get_conversation_history"
	MethodSavePreference         Method = "save_preference"
	MethodGetPreferences         Method = "get_preferences"
	MethodSearchContext          Method = "search_context"
	MethodUpdateLocation         Method = "update_location"
	MethodClearContext           Method = "clear_context"
)

// Methods lists every protocol method.
func Methods() []Method {
	return []Method{
		MethodQuery,
		MethodGetSchedule,
		MethodGetTravelTime,
		MethodSaveContext,
		MethodGetContext,
		MethodGetConversationHistory,
		MethodSavePreference,
		MethodGetPreferences,
		MethodSearchContext,
		MethodUpdateLocation,
		MethodClearContext,
	}
}

// ParseMethod validates wire input against the closed method set.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodQuery, MethodGetSchedule, MethodGetTravelTime,
		MethodSaveContext, MethodGetContext, MethodGetConversationHistory,
		MethodSavePreference, MethodGetPreferences, MethodSearchContext,
		MethodUpdateLocation, MethodClearContext:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMethod, s)
	}
}
