package models

import "time"

// DefaultUserID is the profile used when a deployment has not created
// additional users.
const DefaultUserID = "default"

// WatchlistItem is a saved catalog entry, identified by (MediaType, ID).
type WatchlistItem struct {
	ID        string      `json:"id"`
	MediaType string      `json:"mediaType"` // "movie" | "series"
	Name      string      `json:"name"`
	Year      int         `json:"year,omitempty"`
	PosterURL string      `json:"posterUrl,omitempty"`
	Genres    []string    `json:"genres,omitempty"`
	AddedAt   time.Time   `json:"addedAt"`
	Watched   bool        `json:"watched"`
	Progress  interface{} `json:"progress,omitempty"`
}

// WatchlistUpsert is the payload for adding or updating a watchlist item.
// Zero-valued optional fields leave the stored value untouched.
type WatchlistUpsert struct {
	ID        string   `json:"id"`
	MediaType string   `json:"mediaType"`
	Name      string   `json:"name,omitempty"`
	Year      int      `json:"year,omitempty"`
	PosterURL string   `json:"posterUrl,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}
