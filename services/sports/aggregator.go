// Package sports aggregates live-sports match listings from several upstream
// category endpoints and resolves watchable stream candidates for a match.
package sports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"streamverse/internal/ttlcache"
	"streamverse/internal/upstream"
	"streamverse/models"
)

// DefaultCategories is the fixed category list fetched when none is
// configured.
var DefaultCategories = []string{"football", "basketball", "fight", "motor-sports", "tennis"}

const (
	// aggregateTimeout is the single coarse bound around the whole category
	// fan-out. Individual category fetches carry no private timeout.
	aggregateTimeout = 30 * time.Second

	// listingTTL memoizes per-category listings; match schedules move slowly
	// enough that a minute of staleness is invisible.
	listingTTL = time.Minute

	// liveWindowPast and liveWindowFuture bound the schedule-based live
	// classification: [now-2h, now+24h].
	liveWindowPast   = 2 * time.Hour
	liveWindowFuture = 24 * time.Hour

	sectionCap = 20
)

// liveKeywords mark a match live by title alone.
var liveKeywords = []string{"live", "in play", "started"}

type Aggregator struct {
	baseURL    string
	httpc      *http.Client
	categories []string
	cache      *ttlcache.Cache

	now func() time.Time
}

func NewAggregator(baseURL string, httpc *http.Client, categories []string, cache *ttlcache.Cache) *Aggregator {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if cache == nil {
		cache = ttlcache.New(listingTTL)
	}
	return &Aggregator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpc:      httpc,
		categories: categories,
		cache:      cache,
		now:        time.Now,
	}
}

// Categories returns the configured category list.
func (a *Aggregator) Categories() []string {
	out := make([]string, len(a.categories))
	copy(out, a.categories)
	return out
}

// Matches fetches every category in parallel, classifies each record, and
// merges the results by id. A failing category contributes zero records and a
// logged warning; the error never escapes the aggregation call.
func (a *Aggregator) Matches(ctx context.Context) []models.MatchRecord {
	ctx, cancel := context.WithTimeout(ctx, aggregateTimeout)
	defer cancel()

	now := a.now()

	// Each goroutine writes its own slot, so no lock is needed.
	fetched := make([][]models.MatchRecord, len(a.categories))

	p := pool.New().WithMaxGoroutines(len(a.categories))
	for i, category := range a.categories {
		i, category := i, category
		p.Go(func() {
			records, err := a.fetchCategory(ctx, category)
			if err != nil {
				log.Printf("[sports] category %s fetch failed: %v", category, err)
				return
			}
			for j := range records {
				classify(&records[j], now)
			}
			fetched[i] = records
		})
	}
	p.Wait()

	// Merge in category-list order so the outcome is deterministic no matter
	// which fetch finished first.
	var all []models.MatchRecord
	for _, records := range fetched {
		all = append(all, records...)
	}
	return mergeByPriority(all)
}

// FilterOptions are independent predicate passes over the merged list,
// applied in declaration order. Filtering is non-destructive; the caller
// re-derives from the full merged list on every change.
type FilterOptions struct {
	Category    string
	LiveOnly    bool
	PopularOnly bool
}

// Filter applies opts to records and returns a new slice.
func Filter(records []models.MatchRecord, opts FilterOptions) []models.MatchRecord {
	out := records
	if opts.Category != "" {
		out = keep(out, func(m models.MatchRecord) bool {
			return strings.EqualFold(m.Category, opts.Category)
		})
	}
	if opts.LiveOnly {
		out = keep(out, func(m models.MatchRecord) bool {
			return m.Classification == models.ClassificationLive
		})
	}
	if opts.PopularOnly {
		out = keep(out, func(m models.MatchRecord) bool { return m.Popular })
	}
	return out
}

// Sections groups merged records into capped named display groups: live
// matches first, then popular, then soonest upcoming, then one section per
// category.
func Sections(records []models.MatchRecord, categories []string) []models.MatchSection {
	sections := []models.MatchSection{
		{Name: "Live Now", Matches: capLen(Filter(records, FilterOptions{LiveOnly: true}))},
		{Name: "Popular", Matches: capLen(Filter(records, FilterOptions{PopularOnly: true}))},
		{Name: "Starting Soon", Matches: capLen(startingSoon(records))},
	}
	for _, category := range categories {
		sections = append(sections, models.MatchSection{
			Name:    sectionTitle(category),
			Matches: capLen(Filter(records, FilterOptions{Category: category})),
		})
	}
	return sections
}

func (a *Aggregator) fetchCategory(ctx context.Context, category string) ([]models.MatchRecord, error) {
	cacheKey := "sports/matches/" + category
	if cached, ok := a.cache.Get(cacheKey); ok {
		if records, ok := cached.([]models.MatchRecord); ok {
			// Callers classify records in place; hand out a copy so the
			// cached entry is never written to.
			return slices.Clone(records), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/matches/"+category, nil)
	if err != nil {
		return nil, fmt.Errorf("create matches request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, upstream.FromTransport("sports matches", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.FromStatus("sports matches", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, upstream.FromTransport("sports matches read", err)
	}

	var payload []matchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s matches: %w", category, err)
	}

	records := make([]models.MatchRecord, 0, len(payload))
	for _, m := range payload {
		records = append(records, m.normalize(category))
	}
	a.cache.SetTTL(cacheKey, slices.Clone(records), listingTTL)
	return records, nil
}

// matchPayload mirrors the upstream per-category listing shape.
type matchPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     int64  `json:"date"` // epoch milliseconds
	Popular  bool   `json:"popular"`
	Poster   string `json:"poster"`
	Sources  []struct {
		Source string `json:"source"`
		ID     string `json:"id"`
	} `json:"sources"`
}

func (m matchPayload) normalize(category string) models.MatchRecord {
	rec := models.MatchRecord{
		ID:        m.ID,
		Title:     m.Title,
		Category:  m.Category,
		PosterURL: m.Poster,
		Popular:   m.Popular,
	}
	if rec.Category == "" {
		rec.Category = category
	}
	if m.Date > 0 {
		rec.ScheduledAt = time.UnixMilli(m.Date).UTC()
	}
	for _, s := range m.Sources {
		rec.Sources = append(rec.Sources, models.MatchSource{Provider: s.Source, ID: s.ID})
	}
	return rec
}

// classify tags a record live when it has at least one source, its title
// carries a live keyword, or its scheduled time falls inside the live window.
func classify(m *models.MatchRecord, now time.Time) {
	if isLive(m, now) {
		m.Classification = models.ClassificationLive
		m.Priority = models.PriorityLive
		return
	}
	m.Classification = models.ClassificationUpcoming
	m.Priority = models.PriorityUpcoming
}

func isLive(m *models.MatchRecord, now time.Time) bool {
	if len(m.Sources) > 0 {
		return true
	}
	title := strings.ToLower(m.Title)
	for _, kw := range liveKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	if m.ScheduledAt.IsZero() {
		return false
	}
	return !m.ScheduledAt.Before(now.Add(-liveWindowPast)) && !m.ScheduledAt.After(now.Add(liveWindowFuture))
}

// mergeByPriority deduplicates by id. The first-seen record wins unless a
// later record's priority is strictly lower (lower number = more important).
func mergeByPriority(records []models.MatchRecord) []models.MatchRecord {
	merged := make([]models.MatchRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		at, seen := index[rec.ID]
		if !seen {
			index[rec.ID] = len(merged)
			merged = append(merged, rec)
			continue
		}
		if rec.Priority < merged[at].Priority {
			merged[at] = rec
		}
	}
	return merged
}

func keep(records []models.MatchRecord, pred func(models.MatchRecord) bool) []models.MatchRecord {
	out := make([]models.MatchRecord, 0, len(records))
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func startingSoon(records []models.MatchRecord) []models.MatchRecord {
	upcoming := keep(records, func(m models.MatchRecord) bool {
		return m.Classification == models.ClassificationUpcoming && !m.ScheduledAt.IsZero()
	})
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt)
	})
	return upcoming
}

func capLen(records []models.MatchRecord) []models.MatchRecord {
	if len(records) > sectionCap {
		return records[:sectionCap]
	}
	return records
}

func sectionTitle(category string) string {
	words := strings.FieldsFunc(category, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
