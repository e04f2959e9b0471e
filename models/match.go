package models

import "time"

// Match classification priorities. Lower number = higher importance; the
// value is only used to pick a winner among same-id records during merge.
const (
	PriorityLive     = 1
	PriorityUpcoming = 4
)

const (
	ClassificationLive     = "live"
	ClassificationUpcoming = "upcoming"
)

// MatchSource identifies one embed provider's listing of a match.
type MatchSource struct {
	Provider string `json:"source"`
	ID       string `json:"id"`
}

// MatchRecord is one aggregated sports match. Classification and Priority are
// derived by the aggregator and never persisted upstream.
type MatchRecord struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Category       string        `json:"category"`
	PosterURL      string        `json:"posterUrl,omitempty"`
	ScheduledAt    time.Time     `json:"scheduledAt"`
	Popular        bool          `json:"popular"`
	Sources        []MatchSource `json:"sources"`
	Classification string        `json:"classification"`
	Priority       int           `json:"priority"`
}

// MatchSection is a named display group of matches.
type MatchSection struct {
	Name    string        `json:"name"`
	Matches []MatchRecord `json:"matches"`
}

// StreamCandidate is one watchable embed for a match. Fetched fresh per watch
// session, never persisted.
type StreamCandidate struct {
	ID       string `json:"id"`
	Provider string `json:"source"`
	EmbedURL string `json:"embedUrl"`
	HD       bool   `json:"hd"`
}

// StreamsResponse is the ranked candidate list plus the auto-selected index
// (-1 when no candidates were found). The client may override the selection
// without re-fetching.
type StreamsResponse struct {
	Candidates []StreamCandidate `json:"candidates"`
	Selected   int               `json:"selected"`
}
