package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"streamverse/models"
	"streamverse/services/sports"
)

type matchAggregator interface {
	Matches(ctx context.Context) []models.MatchRecord
	Categories() []string
}

type streamResolver interface {
	Streams(ctx context.Context, sources []models.MatchSource) models.StreamsResponse
}

var (
	_ matchAggregator = (*sports.Aggregator)(nil)
	_ streamResolver  = (*sports.Resolver)(nil)
)

type SportsHandler struct {
	Aggregator matchAggregator
	Resolver   streamResolver
}

func NewSportsHandler(aggregator matchAggregator, resolver streamResolver) *SportsHandler {
	return &SportsHandler{Aggregator: aggregator, Resolver: resolver}
}

// Matches returns the merged match list with the requested filters applied.
// Filters are re-derived from the full merged list on every call.
func (h *SportsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := sports.FilterOptions{
		Category:    q.Get("category"),
		LiveOnly:    q.Get("live") == "true",
		PopularOnly: q.Get("popular") == "true",
	}

	matches := sports.Filter(h.Aggregator.Matches(r.Context()), opts)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Matches []models.MatchRecord `json:"matches"`
		Total   int                  `json:"total"`
	}{Matches: matches, Total: len(matches)})
}

// Sections returns the merged matches grouped into capped named sections for
// display.
func (h *SportsHandler) Sections(w http.ResponseWriter, r *http.Request) {
	matches := h.Aggregator.Matches(r.Context())
	sections := sports.Sections(matches, h.Aggregator.Categories())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Sections []models.MatchSection `json:"sections"`
	}{Sections: sections})
}

// Streams resolves watchable candidates for a match's source pairs. Failing
// sources are tolerated; an empty candidate list is a normal response, not an
// error.
func (h *SportsHandler) Streams(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sources []models.MatchSource `json:"sources"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body.Sources) == 0 {
		http.Error(w, "at least one source is required", http.StatusBadRequest)
		return
	}

	resp := h.Resolver.Streams(r.Context(), body.Sources)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
