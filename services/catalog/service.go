// Package catalog proxies a symbolic-operation metadata API (movies and TV)
// behind a TTL cache. An operation name plus a parameter bag is resolved to a
// canonical request target, which is both the outbound URL and the cache key.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"streamverse/internal/ttlcache"
	"streamverse/internal/upstream"
	"streamverse/models"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 * 1024 * 1024

type Service struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client
	cache    *ttlcache.Cache
}

// NewService creates a catalog service. cache may be shared with other
// consumers; keys are namespaced by the canonical target which always starts
// with the upstream path.
func NewService(baseURL, apiKey, language string, httpc *http.Client, cache *ttlcache.Cache) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if cache == nil {
		cache = ttlcache.New(5 * time.Minute)
	}
	return &Service{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		httpc:    httpc,
		cache:    cache,
	}
}

// Query dispatches a symbolic operation. Cached payloads are returned without
// a network call; on a miss the upstream response is fetched, validated and
// cached. Failures are never cached, so a transient upstream error cannot
// poison later calls.
func (s *Service) Query(ctx context.Context, op string, p Params) (json.RawMessage, error) {
	if p.Language == "" {
		p.Language = s.language
	}

	target, err := buildTarget(op, p)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(target); ok {
		if payload, ok := cached.(json.RawMessage); ok {
			return payload, nil
		}
	}

	payload, err := s.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	// Only successful, non-empty payloads are worth remembering.
	if len(payload) > 2 {
		s.cache.Set(target, payload)
	}
	return payload, nil
}

// List runs a listing operation and normalizes the payload into tagged media
// items.
func (s *Service) List(ctx context.Context, op string, p Params) (models.CollectionPage, error) {
	payload, err := s.Query(ctx, op, p)
	if err != nil {
		return models.CollectionPage{}, err
	}
	page, err := models.ParseCollectionPage(payload)
	if err != nil {
		return models.CollectionPage{}, fmt.Errorf("parse %s page: %w", op, err)
	}
	return page, nil
}

// ClearCache drops every cached payload. Used when the API key changes.
func (s *Service) ClearCache() {
	s.cache.Clear()
	log.Printf("[catalog] cleared response cache")
}

func (s *Service) fetch(ctx context.Context, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+target, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, upstream.FromTransport("catalog query", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstream.FromStatus("catalog query", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, upstream.FromTransport("catalog read", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("catalog response for %s is not valid json", target)
	}
	return json.RawMessage(body), nil
}
