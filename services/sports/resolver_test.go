package sports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"streamverse/models"
)

func TestRankStability(t *testing.T) {
	candidates := []models.StreamCandidate{
		{ID: "a", HD: false},
		{ID: "b", HD: true},
		{ID: "c", HD: false},
	}

	Rank(candidates)

	if !candidates[0].HD || candidates[0].ID != "b" {
		t.Fatalf("expected HD candidate first, got %+v", candidates[0])
	}
	// Relative order of the two non-HD candidates must be preserved.
	if candidates[1].ID != "a" || candidates[2].ID != "c" {
		t.Fatalf("expected stable order a,c after the HD candidate, got %+v", candidates)
	}
}

func TestAutoSelect(t *testing.T) {
	tests := []struct {
		name       string
		candidates []models.StreamCandidate
		want       int
	}{
		{name: "empty", candidates: nil, want: -1},
		{
			name:       "no hd falls back to first in fetch order",
			candidates: []models.StreamCandidate{{ID: "a"}, {ID: "b"}},
			want:       0,
		},
		{
			name:       "first hd wins",
			candidates: []models.StreamCandidate{{ID: "a"}, {ID: "b", HD: true}},
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoSelect(tt.candidates); got != tt.want {
				t.Errorf("AutoSelect() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeCandidateQuality(t *testing.T) {
	tests := []struct {
		name    string
		payload streamPayload
		wantHD  bool
	}{
		{name: "explicit flag", payload: streamPayload{HD: true}, wantHD: true},
		{name: "quality string hd", payload: streamPayload{Quality: "HD"}, wantHD: true},
		{name: "quality string fullhd lowercase", payload: streamPayload{Quality: "fullhd"}, wantHD: true},
		{name: "sd quality", payload: streamPayload{Quality: "SD"}, wantHD: false},
		{name: "nothing", payload: streamPayload{}, wantHD: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := normalizeCandidate(tt.payload, "alpha")
			if c.HD != tt.wantHD {
				t.Errorf("hd = %t, want %t", c.HD, tt.wantHD)
			}
			if c.Provider != "alpha" {
				t.Errorf("expected provider fallback to source pair, got %q", c.Provider)
			}
		})
	}
}

func TestStreamsToleratesFailingSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/stream/alpha/"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "a1", "streamNo": 1, "quality": "SD", "embedUrl": "https://alpha/embed/1", "source": "alpha"},
				{"id": "a2", "streamNo": 2, "hd": true, "embedUrl": "https://alpha/embed/2", "source": "alpha"},
			})
		case strings.Contains(r.URL.Path, "/stream/beta/"):
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	resolver := NewResolver(srv.URL, srv.Client())

	resp := resolver.Streams(context.Background(), []models.MatchSource{
		{Provider: "alpha", ID: "m1"},
		{Provider: "beta", ID: "m1"},
	})

	if len(resp.Candidates) != 2 {
		t.Fatalf("expected 2 candidates from the surviving source, got %d", len(resp.Candidates))
	}
	if !resp.Candidates[0].HD {
		t.Fatalf("expected HD candidate ranked first, got %+v", resp.Candidates[0])
	}
	if resp.Selected != 0 {
		t.Fatalf("expected the ranked HD candidate auto-selected, got index %d", resp.Selected)
	}
}

func TestStreamsEmptyWhenAllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	resolver := NewResolver(srv.URL, srv.Client())

	resp := resolver.Streams(context.Background(), []models.MatchSource{{Provider: "alpha", ID: "m1"}})
	if len(resp.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(resp.Candidates))
	}
	if resp.Selected != -1 {
		t.Fatalf("expected selected index -1 for empty list, got %d", resp.Selected)
	}
}
