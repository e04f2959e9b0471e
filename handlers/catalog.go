package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"streamverse/internal/upstream"
	"streamverse/models"
	"streamverse/services/catalog"
)

type catalogService interface {
	Query(ctx context.Context, op string, p catalog.Params) (json.RawMessage, error)
	List(ctx context.Context, op string, p catalog.Params) (models.CollectionPage, error)
}

var _ catalogService = (*catalog.Service)(nil)

type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// Query proxies a symbolic catalog operation and returns the raw upstream
// payload (served from cache inside the TTL window).
func (h *CatalogHandler) Query(w http.ResponseWriter, r *http.Request) {
	op := mux.Vars(r)["operation"]

	payload, err := h.Service.Query(r.Context(), op, paramsFromQuery(r))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Browse runs a listing operation and returns records normalized into tagged
// media items.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	op := mux.Vars(r)["operation"]

	page, err := h.Service.List(r.Context(), op, paramsFromQuery(r))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func paramsFromQuery(r *http.Request) catalog.Params {
	q := r.URL.Query()
	p := catalog.Params{
		Query:            q.Get("query"),
		SortBy:           q.Get("sortBy"),
		Genres:           q.Get("genres"),
		Keywords:         q.Get("keywords"),
		Language:         q.Get("language"),
		ReleaseDateAfter: q.Get("releasedAfter"),
		Append:           q.Get("append"),
	}
	if id, err := strconv.ParseInt(q.Get("id"), 10, 64); err == nil {
		p.ID = id
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = page
	}
	if votes, err := strconv.Atoi(q.Get("minVotes")); err == nil {
		p.MinVotes = votes
	}
	return p
}

func writeCatalogError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrUnknownOperation),
		errors.Is(err, catalog.ErrIDRequired),
		errors.Is(err, catalog.ErrQueryRequired):
		status = http.StatusBadRequest
	default:
		var ue *upstream.Error
		if errors.As(err, &ue) {
			status = http.StatusBadGateway
		}
	}
	http.Error(w, err.Error(), status)
}
