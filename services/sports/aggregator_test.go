package sports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"streamverse/internal/ttlcache"
	"streamverse/models"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  models.MatchRecord
		want string
	}{
		{
			name: "sources present wins even far in the future",
			rec: models.MatchRecord{
				ScheduledAt: now.Add(90 * 24 * time.Hour),
				Sources:     []models.MatchSource{{Provider: "alpha", ID: "1"}},
			},
			want: models.ClassificationLive,
		},
		{
			name: "live keyword in title",
			rec:  models.MatchRecord{Title: "Derby LIVE coverage", ScheduledAt: now.Add(72 * time.Hour)},
			want: models.ClassificationLive,
		},
		{
			name: "inside schedule window",
			rec:  models.MatchRecord{Title: "Quiet match", ScheduledAt: now.Add(3 * time.Hour)},
			want: models.ClassificationLive,
		},
		{
			name: "recently started",
			rec:  models.MatchRecord{Title: "Quiet match", ScheduledAt: now.Add(-time.Hour)},
			want: models.ClassificationLive,
		},
		{
			name: "too far out",
			rec:  models.MatchRecord{Title: "Quiet match", ScheduledAt: now.Add(48 * time.Hour)},
			want: models.ClassificationUpcoming,
		},
		{
			name: "long finished",
			rec:  models.MatchRecord{Title: "Quiet match", ScheduledAt: now.Add(-5 * time.Hour)},
			want: models.ClassificationUpcoming,
		},
		{
			name: "no schedule no sources",
			rec:  models.MatchRecord{Title: "Quiet match"},
			want: models.ClassificationUpcoming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classify(&tt.rec, now)
			if tt.rec.Classification != tt.want {
				t.Errorf("classification = %q, want %q", tt.rec.Classification, tt.want)
			}
			wantPriority := models.PriorityUpcoming
			if tt.want == models.ClassificationLive {
				wantPriority = models.PriorityLive
			}
			if tt.rec.Priority != wantPriority {
				t.Errorf("priority = %d, want %d", tt.rec.Priority, wantPriority)
			}
		})
	}
}

func TestMergeByPriority(t *testing.T) {
	live := models.MatchRecord{ID: "m1", Title: "live copy", Priority: models.PriorityLive}
	upcoming := models.MatchRecord{ID: "m1", Title: "upcoming copy", Priority: models.PriorityUpcoming}
	other := models.MatchRecord{ID: "m2", Title: "other", Priority: models.PriorityUpcoming}

	tests := []struct {
		name  string
		input []models.MatchRecord
	}{
		{name: "live first", input: []models.MatchRecord{live, other, upcoming}},
		{name: "live last", input: []models.MatchRecord{upcoming, other, live}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeByPriority(tt.input)
			if len(merged) != 2 {
				t.Fatalf("expected 2 merged records, got %d", len(merged))
			}
			var m1 *models.MatchRecord
			for i := range merged {
				if merged[i].ID == "m1" {
					m1 = &merged[i]
				}
			}
			if m1 == nil {
				t.Fatalf("merged output missing m1")
			}
			if m1.Priority != models.PriorityLive || m1.Title != "live copy" {
				t.Errorf("expected live copy to win regardless of order, got %+v", *m1)
			}
		})
	}
}

func TestMergeFirstSeenWinsOnEqualPriority(t *testing.T) {
	first := models.MatchRecord{ID: "m1", Title: "first", Priority: models.PriorityUpcoming}
	second := models.MatchRecord{ID: "m1", Title: "second", Priority: models.PriorityUpcoming}

	merged := mergeByPriority([]models.MatchRecord{first, second})
	if len(merged) != 1 || merged[0].Title != "first" {
		t.Fatalf("expected first-seen record to win the tie, got %+v", merged)
	}
}

func TestFilterPasses(t *testing.T) {
	records := []models.MatchRecord{
		{ID: "1", Category: "football", Classification: models.ClassificationLive, Popular: true},
		{ID: "2", Category: "football", Classification: models.ClassificationUpcoming},
		{ID: "3", Category: "basketball", Classification: models.ClassificationLive},
	}

	tests := []struct {
		name    string
		opts    FilterOptions
		wantIDs []string
	}{
		{name: "no filters", opts: FilterOptions{}, wantIDs: []string{"1", "2", "3"}},
		{name: "category", opts: FilterOptions{Category: "football"}, wantIDs: []string{"1", "2"}},
		{name: "live only", opts: FilterOptions{LiveOnly: true}, wantIDs: []string{"1", "3"}},
		{name: "popular only", opts: FilterOptions{PopularOnly: true}, wantIDs: []string{"1"}},
		{name: "combined", opts: FilterOptions{Category: "football", LiveOnly: true, PopularOnly: true}, wantIDs: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.opts)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d records, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("record %d: got id %q, want %q", i, got[i].ID, id)
				}
			}
			// Filtering must not mutate the source list.
			if len(records) != 3 {
				t.Fatalf("filter mutated input, now %d records", len(records))
			}
		})
	}
}

func TestMatchesPartialFailure(t *testing.T) {
	// football succeeds with 3 records (one carrying sources), basketball
	// fails with a server error. The aggregation must surface football's
	// records and swallow basketball's failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/matches/football"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "f1", "title": "United vs City", "sources": []map[string]string{{"source": "alpha", "id": "a1"}}},
				{"id": "f2", "title": "Rovers vs Wanderers"},
				{"id": "f3", "title": "Albion vs Athletic"},
			})
		case strings.HasSuffix(r.URL.Path, "/matches/basketball"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	agg := NewAggregator(srv.URL, srv.Client(), []string{"football", "basketball"}, ttlcache.New(time.Minute))

	matches := agg.Matches(context.Background())
	if len(matches) != 3 {
		t.Fatalf("expected 3 records from the surviving category, got %d", len(matches))
	}

	var liveCount int
	for _, m := range matches {
		if m.Classification == models.ClassificationLive {
			liveCount++
		}
	}
	if liveCount != 1 {
		t.Fatalf("expected exactly 1 live-classified record, got %d", liveCount)
	}
}

func TestMatchesDeduplicatesAcrossCategories(t *testing.T) {
	// The same match id appears in two categories; only one copy survives,
	// and it is the live one.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/matches/football"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "shared", "title": "Crossover event"},
			})
		case strings.HasSuffix(r.URL.Path, "/matches/fight"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "shared", "title": "Crossover event", "sources": []map[string]string{{"source": "alpha", "id": "a1"}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	agg := NewAggregator(srv.URL, srv.Client(), []string{"football", "fight"}, ttlcache.New(time.Minute))

	matches := agg.Matches(context.Background())
	if len(matches) != 1 {
		t.Fatalf("expected 1 deduplicated record, got %d", len(matches))
	}
	if matches[0].Priority != models.PriorityLive {
		t.Fatalf("expected the live copy to win the merge, got priority %d", matches[0].Priority)
	}
}

func TestMatchesUsesListingCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]map[string]any{{"id": fmt.Sprintf("m%d", calls), "title": "Match"}})
	}))
	defer srv.Close()

	agg := NewAggregator(srv.URL, srv.Client(), []string{"tennis"}, ttlcache.New(time.Minute))

	agg.Matches(context.Background())
	agg.Matches(context.Background())

	if calls != 1 {
		t.Fatalf("expected second aggregation to hit the listing cache, got %d upstream calls", calls)
	}
}

func TestFetchCategoryIsolatesCachedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": "m1", "title": "Quiet match"}})
	}))
	defer srv.Close()

	agg := NewAggregator(srv.URL, srv.Client(), []string{"football"}, ttlcache.New(time.Minute))

	first, err := agg.fetchCategory(context.Background(), "football")
	if err != nil {
		t.Fatalf("first fetch returned error: %v", err)
	}
	first[0].Classification = models.ClassificationLive
	first[0].Title = "mutated"

	second, err := agg.fetchCategory(context.Background(), "football")
	if err != nil {
		t.Fatalf("cached fetch returned error: %v", err)
	}
	if second[0].Title != "Quiet match" || second[0].Classification != "" {
		t.Fatalf("mutation of a previous result leaked into the cache: %+v", second[0])
	}
}

func TestMatchesConcurrentFromWarmCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "m1", "title": "United vs City", "sources": []map[string]string{{"source": "alpha", "id": "a1"}}},
			{"id": "m2", "title": "Rovers vs Wanderers"},
		})
	}))
	defer srv.Close()

	agg := NewAggregator(srv.URL, srv.Client(), []string{"football"}, ttlcache.New(time.Minute))

	if warm := agg.Matches(context.Background()); len(warm) != 2 {
		t.Fatalf("expected 2 records from the warm-up call, got %d", len(warm))
	}

	// Handlers run on concurrent goroutines; classification of cache hits must
	// not touch shared state.
	var wg sync.WaitGroup
	results := make([][]models.MatchRecord, 4)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = agg.Matches(context.Background())
		}()
	}
	wg.Wait()

	for i, matches := range results {
		if len(matches) != 2 {
			t.Fatalf("call %d: expected 2 records, got %d", i, len(matches))
		}
		if matches[0].Classification == "" || matches[1].Classification == "" {
			t.Fatalf("call %d: records left unclassified: %+v", i, matches)
		}
	}
}

func TestSections(t *testing.T) {
	records := []models.MatchRecord{
		{ID: "1", Category: "football", Classification: models.ClassificationLive, Popular: true},
		{ID: "2", Category: "football", Classification: models.ClassificationUpcoming, ScheduledAt: time.Now().Add(40 * time.Hour)},
		{ID: "3", Category: "tennis", Classification: models.ClassificationUpcoming, ScheduledAt: time.Now().Add(30 * time.Hour)},
	}

	sections := Sections(records, []string{"football", "tennis"})
	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(sections))
	}
	if sections[0].Name != "Live Now" || len(sections[0].Matches) != 1 {
		t.Errorf("unexpected Live Now section: %+v", sections[0])
	}
	if sections[1].Name != "Popular" || len(sections[1].Matches) != 1 {
		t.Errorf("unexpected Popular section: %+v", sections[1])
	}
	// Starting Soon is ordered by schedule: tennis (30h) before football (40h).
	if sections[2].Name != "Starting Soon" || len(sections[2].Matches) != 2 || sections[2].Matches[0].ID != "3" {
		t.Errorf("unexpected Starting Soon section: %+v", sections[2])
	}
	if sections[3].Name != "Football" || len(sections[3].Matches) != 2 {
		t.Errorf("unexpected Football section: %+v", sections[3])
	}
	if sections[4].Name != "Tennis" || len(sections[4].Matches) != 1 {
		t.Errorf("unexpected Tennis section: %+v", sections[4])
	}
}
