package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/search"
)

type SearchService interface {
	NaturalLanguage(ctx context.Context, question string, page search.Page) (*search.Result, error)
	Advanced(ctx context.Context, f search.Filters, page search.Page) (*search.Result, error)
}

type SearchHandler struct {
	search SearchService
	logger *logger.Logger
}

func NewSearchHandler(svc SearchService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{search: svc, logger: log.Named("search_handler")}
}

type naturalSearchRequest struct {
	Question string `json:"question" validate:"max=500"`
}

func pageFrom(r *http.Request) (search.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return search.Page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return search.Page{}, err
	}
	return search.Page{Limit: limit, Offset: offset}, nil
}

// HandleNaturalLanguage answers a free-text question. Parser trouble never
// produces an error response; the heuristic result is used instead.
func (h *SearchHandler) HandleNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	var req naturalSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	res, err := h.search.NaturalLanguage(r.Context(), req.Question, page)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *SearchHandler) HandleAdvanced(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := search.NewFilters()
	if c := strings.ToLower(strings.TrimSpace(q.Get("category"))); c != "" {
		f.Category = &c
	}
	if kw := strings.Fields(strings.ToLower(q.Get("q"))); len(kw) > 0 {
		f.Keywords = kw
	}
	f.SortBy = search.ParseSortOrder(q.Get("sortBy"))

	var err error
	if f.MinPrice, err = queryPrice(r, "minPrice"); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if f.MaxPrice, err = queryPrice(r, "maxPrice"); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	res, err := h.search.Advanced(r.Context(), f, page)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
