package models

import "encoding/json"

// MediaType distinguishes movie-like from show-like catalog records. Upstream
// payloads carry no explicit tag; the type is decided once at the ingestion
// boundary from field presence ("title" for movies, "name" for shows) and
// carried explicitly from then on.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// MediaItem is a normalized catalog record.
type MediaItem struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"mediaType"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"` // YYYY-MM-DD
	Rating       float64   `json:"rating,omitempty"`
	VoteCount    int       `json:"voteCount,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	GenreIDs     []int     `json:"genreIds,omitempty"`
}

// CollectionPage is one page of a paginated catalog listing.
type CollectionPage struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"totalPages"`
	TotalResults int         `json:"totalResults"`
	Items        []MediaItem `json:"items"`
}

// rawMediaItem mirrors the upstream listing shape. Movies use title/release_date,
// shows use name/first_air_date.
type rawMediaItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

type rawCollectionPage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []rawMediaItem `json:"results"`
}

// ParseCollectionPage decodes an upstream listing payload and tags each record
// with its media kind.
func ParseCollectionPage(payload []byte) (CollectionPage, error) {
	var raw rawCollectionPage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return CollectionPage{}, err
	}

	page := CollectionPage{
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
		Items:        make([]MediaItem, 0, len(raw.Results)),
	}
	for _, r := range raw.Results {
		page.Items = append(page.Items, r.normalize())
	}
	return page, nil
}

func (r rawMediaItem) normalize() MediaItem {
	item := MediaItem{
		ID:           r.ID,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Rating:       r.VoteAverage,
		VoteCount:    r.VoteCount,
		Popularity:   r.Popularity,
		GenreIDs:     r.GenreIDs,
	}
	if r.Title != "" || r.ReleaseDate != "" {
		item.MediaType = MediaTypeMovie
		item.Title = r.Title
		item.ReleaseDate = r.ReleaseDate
	} else {
		item.MediaType = MediaTypeSeries
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
	}
	return item
}
