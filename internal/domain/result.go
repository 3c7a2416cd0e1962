package domain

// QueryResult is the flat assistant result returned by the simplified query
// contract. Downstream renderers pattern-match on these exact JSON keys, so
// the field names are load-bearing.
type QueryResult struct {
	Type        string `json:"type,omitempty"`
	Content     string `json:"content"`
	Events      any    `json:"events,omitempty"`
	TravelTimes any    `json:"travelTimes,omitempty"`
	Link        string `json:"link,omitempty"`
	Contacts    any    `json:"contacts,omitempty"`
	Tasks       any    `json:"tasks,omitempty"`
	Meeting     any    `json:"meeting,omitempty"`
	Files       any    `json:"files,omitempty"`
	Notes       any    `json:"notes,omitempty"`
	Messages    any    `json:"messages,omitempty"`
	Videos      any    `json:"videos,omitempty"`
	Weather     any    `json:"weather,omitempty"`
	Forecasts   any    `json:"forecasts,omitempty"`
	Places      any    `json:"places,omitempty"`
	Timezone    any    `json:"timezone,omitempty"`
	Forms       any    `json:"forms,omitempty"`
	Results     any    `json:"results,omitempty"`
	Playlists   any    `json:"playlists,omitempty"`
}
