package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrUnknownOperation = errors.New("unknown catalog operation")
	ErrIDRequired       = errors.New("operation requires an id")
	ErrQueryRequired    = errors.New("operation requires a query")
)

// Params is the parameter bag accepted by catalog operations. Zero values are
// omitted from the canonical target.
type Params struct {
	ID               int64
	Query            string
	Page             int
	SortBy           string
	Genres           string // comma-separated genre ids
	Keywords         string
	Language         string
	ReleaseDateAfter string // YYYY-MM-DD lower bound
	MinVotes         int
	Append           string // response-expansion list, e.g. "credits,videos"
}

// operation describes how a symbolic operation maps onto the upstream API.
type operation struct {
	path       string
	needsID    bool
	needsQuery bool
}

// operations is the full table of recognized symbolic operations. Anything
// not listed here fails fast with ErrUnknownOperation.
var operations = map[string]operation{
	"trending":         {path: "/trending/all/week"},
	"popular-movies":   {path: "/movie/popular"},
	"top-rated-movies": {path: "/movie/top_rated"},
	"popular-shows":    {path: "/tv/popular"},
	"top-rated-shows":  {path: "/tv/top_rated"},
	"discover-movies":  {path: "/discover/movie"},
	"discover-shows":   {path: "/discover/tv"},
	"search":           {path: "/search/multi", needsQuery: true},
	"movie-details":    {path: "/movie/%d", needsID: true},
	"show-details":     {path: "/tv/%d", needsID: true},
	"genres-movies":    {path: "/genre/movie/list"},
	"genres-shows":     {path: "/genre/tv/list"},
}

// IsKnownOperation reports whether op is in the operation table.
func IsKnownOperation(op string) bool {
	_, ok := operations[op]
	return ok
}

// buildTarget deterministically builds the canonical request target for an
// operation: the upstream path plus a query string with keys in sorted order.
// The target doubles as the cache key, so two calls with identical inputs
// always produce identical targets.
func buildTarget(op string, p Params) (string, error) {
	def, ok := operations[op]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if def.needsID && p.ID <= 0 {
		return "", fmt.Errorf("%w: %q", ErrIDRequired, op)
	}
	if def.needsQuery && strings.TrimSpace(p.Query) == "" {
		return "", fmt.Errorf("%w: %q", ErrQueryRequired, op)
	}

	path := def.path
	if def.needsID {
		path = fmt.Sprintf(def.path, p.ID)
	}

	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.Genres != "" {
		q.Set("with_genres", p.Genres)
	}
	if p.Keywords != "" {
		q.Set("with_keywords", p.Keywords)
	}
	if p.Language != "" {
		q.Set("language", p.Language)
	}
	if p.ReleaseDateAfter != "" {
		q.Set("primary_release_date.gte", p.ReleaseDateAfter)
	}
	if p.MinVotes > 0 {
		q.Set("vote_count.gte", strconv.Itoa(p.MinVotes))
	}
	if p.Append != "" {
		q.Set("append_to_response", p.Append)
	}

	// url.Values.Encode sorts keys, which is what makes the target canonical.
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded, nil
	}
	return path, nil
}
