package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"streamverse/models"
)

type stubAggregator struct {
	matches    []models.MatchRecord
	categories []string
}

func (s *stubAggregator) Matches(ctx context.Context) []models.MatchRecord { return s.matches }
func (s *stubAggregator) Categories() []string                             { return s.categories }

type stubResolver struct {
	resp models.StreamsResponse
	got  []models.MatchSource
}

func (s *stubResolver) Streams(ctx context.Context, sources []models.MatchSource) models.StreamsResponse {
	s.got = sources
	return s.resp
}

func TestSportsMatchesAppliesFilters(t *testing.T) {
	agg := &stubAggregator{
		matches: []models.MatchRecord{
			{ID: "1", Category: "football", Classification: models.ClassificationLive},
			{ID: "2", Category: "football", Classification: models.ClassificationUpcoming},
			{ID: "3", Category: "tennis", Classification: models.ClassificationLive},
		},
		categories: []string{"football", "tennis"},
	}
	h := NewSportsHandler(agg, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/sports/matches?category=football&live=true", nil)
	rec := httptest.NewRecorder()
	h.Matches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Matches []models.MatchRecord `json:"matches"`
		Total   int                  `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 1 || len(body.Matches) != 1 || body.Matches[0].ID != "1" {
		t.Fatalf("unexpected filtered response %+v", body)
	}
}

func TestSportsSections(t *testing.T) {
	agg := &stubAggregator{
		matches: []models.MatchRecord{
			{ID: "1", Category: "football", Classification: models.ClassificationLive},
		},
		categories: []string{"football"},
	}
	h := NewSportsHandler(agg, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/sports/sections", nil)
	rec := httptest.NewRecorder()
	h.Sections(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Sections []models.MatchSection `json:"sections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(body.Sections))
	}
	if body.Sections[0].Name != "Live Now" || len(body.Sections[0].Matches) != 1 {
		t.Fatalf("unexpected first section %+v", body.Sections[0])
	}
}

func TestSportsStreams(t *testing.T) {
	resolver := &stubResolver{
		resp: models.StreamsResponse{
			Candidates: []models.StreamCandidate{{ID: "a", HD: true}},
			Selected:   0,
		},
	}
	h := NewSportsHandler(&stubAggregator{}, resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/sports/streams",
		strings.NewReader(`{"sources":[{"source":"alpha","id":"m1"}]}`))
	rec := httptest.NewRecorder()
	h.Streams(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(resolver.got) != 1 || resolver.got[0].Provider != "alpha" {
		t.Fatalf("resolver received unexpected sources %+v", resolver.got)
	}

	var body models.StreamsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Selected != 0 || len(body.Candidates) != 1 {
		t.Fatalf("unexpected response %+v", body)
	}
}

func TestSportsStreamsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty sources", body: `{"sources":[]}`},
		{name: "unknown field", body: `{"sources":[],"extra":true}`},
		{name: "not json", body: `sources=alpha`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSportsHandler(&stubAggregator{}, &stubResolver{})
			req := httptest.NewRequest(http.MethodPost, "/api/sports/streams", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Streams(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}
