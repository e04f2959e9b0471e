package sports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"streamverse/internal/upstream"
	"streamverse/models"
)

// Resolver fetches stream candidates for a match's (provider, id) source
// pairs and ranks them by quality.
type Resolver struct {
	baseURL string
	httpc   *http.Client
}

func NewResolver(baseURL string, httpc *http.Client) *Resolver {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Resolver{baseURL: strings.TrimSuffix(baseURL, "/"), httpc: httpc}
}

// Streams fetches each source independently, flattens the candidates in
// source-list order, ranks HD first with a stable sort, and auto-selects the
// top candidate. A failing source contributes zero candidates and a logged
// warning; sibling sources are unaffected.
func (r *Resolver) Streams(ctx context.Context, sources []models.MatchSource) models.StreamsResponse {
	// Slots keep flattening deterministic regardless of completion order.
	fetched := make([][]models.StreamCandidate, len(sources))

	p := pool.New().WithMaxGoroutines(4)
	for i, src := range sources {
		i, src := i, src
		p.Go(func() {
			candidates, err := r.fetchSource(ctx, src)
			if err != nil {
				log.Printf("[sports] warning: source %s/%s fetch failed: %v", src.Provider, src.ID, err)
				return
			}
			fetched[i] = candidates
		})
	}
	p.Wait()

	var candidates []models.StreamCandidate
	for _, batch := range fetched {
		candidates = append(candidates, batch...)
	}

	Rank(candidates)
	return models.StreamsResponse{
		Candidates: candidates,
		Selected:   AutoSelect(candidates),
	}
}

// Rank sorts candidates in place, HD first. The sort is stable: ties keep
// fetch order, no secondary criterion exists.
func Rank(candidates []models.StreamCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].HD && !candidates[j].HD
	})
}

// AutoSelect returns the index of the first HD candidate, the first candidate
// when none is HD, or -1 for an empty list. A user override later is a pure
// selection-state change on the client, with no re-fetch.
func AutoSelect(candidates []models.StreamCandidate) int {
	if len(candidates) == 0 {
		return -1
	}
	for i, c := range candidates {
		if c.HD {
			return i
		}
	}
	return 0
}

// streamPayload mirrors the upstream per-source candidate shape. Quality is
// reported either as an explicit boolean or as a string such as "HD"/"SD".
type streamPayload struct {
	ID       string `json:"id"`
	StreamNo int    `json:"streamNo"`
	Quality  string `json:"quality"`
	HD       bool   `json:"hd"`
	EmbedURL string `json:"embedUrl"`
	Source   string `json:"source"`
}

func (r *Resolver) fetchSource(ctx context.Context, src models.MatchSource) ([]models.StreamCandidate, error) {
	target := fmt.Sprintf("%s/stream/%s/%s", r.baseURL, src.Provider, src.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, upstream.FromTransport("stream fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.FromStatus("stream fetch", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, upstream.FromTransport("stream read", err)
	}

	var payload []streamPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s streams: %w", src.Provider, err)
	}

	candidates := make([]models.StreamCandidate, 0, len(payload))
	for _, s := range payload {
		candidates = append(candidates, normalizeCandidate(s, src.Provider))
	}
	return candidates, nil
}

func normalizeCandidate(s streamPayload, provider string) models.StreamCandidate {
	c := models.StreamCandidate{
		ID:       s.ID,
		Provider: s.Source,
		EmbedURL: s.EmbedURL,
		HD:       s.HD || strings.Contains(strings.ToUpper(s.Quality), "HD"),
	}
	if c.Provider == "" {
		c.Provider = provider
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("%s-%d", c.Provider, s.StreamNo)
	}
	return c
}
