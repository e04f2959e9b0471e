// Package watchlist persists per-user saved titles as JSON files on disk.
// Items are identified by the (mediaType, id) pair.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"streamverse/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory is required")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrIDRequired         = errors.New("item id is required")
	ErrMediaTypeRequired  = errors.New("media type is required")
	ErrIdentifierRequired = errors.New("media type and id are required")
)

type Service struct {
	dir string

	mu    sync.Mutex
	lists map[string][]models.WatchlistItem
}

// NewService loads any previously persisted watchlists from dir.
func NewService(dir string) (*Service, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watchlist dir: %w", err)
	}

	s := &Service{dir: dir, lists: make(map[string][]models.WatchlistItem)}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns the user's items in the order they were added.
func (s *Service) List(userID string) ([]models.WatchlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[userID]
	out := make([]models.WatchlistItem, len(items))
	copy(out, items)
	return out, nil
}

// AddOrUpdate inserts the item or updates the existing entry with the same
// (mediaType, id). Fields omitted from the upsert keep their stored values.
func (s *Service) AddOrUpdate(userID string, input models.WatchlistUpsert) (models.WatchlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return models.WatchlistItem{}, ErrUserIDRequired
	}
	if strings.TrimSpace(input.ID) == "" {
		return models.WatchlistItem{}, ErrIDRequired
	}
	if strings.TrimSpace(input.MediaType) == "" {
		return models.WatchlistItem{}, ErrMediaTypeRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[userID]
	for i := range items {
		if items[i].ID == input.ID && items[i].MediaType == input.MediaType {
			applyUpsert(&items[i], input)
			if err := s.persistLocked(userID); err != nil {
				return models.WatchlistItem{}, err
			}
			return items[i], nil
		}
	}

	item := models.WatchlistItem{
		ID:        input.ID,
		MediaType: input.MediaType,
		Name:      input.Name,
		Year:      input.Year,
		PosterURL: input.PosterURL,
		Genres:    input.Genres,
		AddedAt:   time.Now().UTC(),
	}
	s.lists[userID] = append(items, item)
	if err := s.persistLocked(userID); err != nil {
		return models.WatchlistItem{}, err
	}
	return item, nil
}

// UpdateState changes the watched flag and/or opaque progress payload of an
// existing item. A nil watched leaves the flag untouched. Returns
// os.ErrNotExist when no matching item is stored.
func (s *Service) UpdateState(userID, mediaType, id string, watched *bool, progress interface{}) (models.WatchlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return models.WatchlistItem{}, ErrUserIDRequired
	}
	if strings.TrimSpace(mediaType) == "" || strings.TrimSpace(id) == "" {
		return models.WatchlistItem{}, ErrIdentifierRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[userID]
	for i := range items {
		if items[i].ID == id && items[i].MediaType == mediaType {
			if watched != nil {
				items[i].Watched = *watched
			}
			if progress != nil {
				items[i].Progress = progress
			}
			if err := s.persistLocked(userID); err != nil {
				return models.WatchlistItem{}, err
			}
			return items[i], nil
		}
	}
	return models.WatchlistItem{}, fmt.Errorf("watchlist item %s/%s: %w", mediaType, id, os.ErrNotExist)
}

// Remove deletes the matching item. The boolean reports whether anything was
// removed.
func (s *Service) Remove(userID, mediaType, id string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUserIDRequired
	}
	if strings.TrimSpace(mediaType) == "" || strings.TrimSpace(id) == "" {
		return false, ErrIdentifierRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[userID]
	for i := range items {
		if items[i].ID == id && items[i].MediaType == mediaType {
			s.lists[userID] = append(items[:i], items[i+1:]...)
			if err := s.persistLocked(userID); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func applyUpsert(item *models.WatchlistItem, input models.WatchlistUpsert) {
	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Year != 0 {
		item.Year = input.Year
	}
	if input.PosterURL != "" {
		item.PosterURL = input.PosterURL
	}
	if input.Genres != nil {
		item.Genres = input.Genres
	}
}

func (s *Service) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read watchlist dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		userID := strings.TrimSuffix(entry.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read watchlist for %s: %w", userID, err)
		}
		var items []models.WatchlistItem
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode watchlist for %s: %w", userID, err)
		}
		s.lists[userID] = items
	}
	return nil
}

// persistLocked writes the user's list atomically via a temp file. Callers
// must hold s.mu.
func (s *Service) persistLocked(userID string) error {
	path := filepath.Join(s.dir, userID+".json")
	data, err := json.MarshalIndent(s.lists[userID], "", "  ")
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return os.Rename(tmp, path)
}
