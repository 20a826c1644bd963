package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

type ListingHandler struct {
	listings *usecase.ListingUsecase
	photos   *usecase.PhotoUsecase
	logger   *logger.Logger
}

func NewListingHandler(listings *usecase.ListingUsecase, photos *usecase.PhotoUsecase, log *logger.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, photos: photos, logger: log.Named("listing_handler")}
}

type createListingRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category"`
	Location    string  `json:"location" validate:"max=200"`
	PhotoURL    string  `json:"photoUrl" validate:"omitempty,url"`
}

type updateListingRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	PhotoURL    *string  `json:"photoUrl" validate:"omitempty,url"`
}

func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID:  middleware.UserIDFromContext(r.Context()),
		IsAdmin: middleware.IsAdmin(r.Context()),
	}
}

func browseInput(r *http.Request) (usecase.BrowseInput, error) {
	q := r.URL.Query()
	in := usecase.BrowseInput{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		SellerID: q.Get("sellerId"),
		Status:   domain.ListingStatus(q.Get("status")),
	}
	var err error
	if in.MinPrice, err = queryPrice(r, "minPrice"); err != nil {
		return in, err
	}
	if in.MaxPrice, err = queryPrice(r, "maxPrice"); err != nil {
		return in, err
	}
	if in.Limit, err = queryInt(r, "limit"); err != nil {
		return in, err
	}
	if in.Offset, err = queryInt(r, "offset"); err != nil {
		return in, err
	}
	return in, nil
}

func (h *ListingHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	in, err := browseInput(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	listings, err := h.listings.Browse(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	listing, err := h.listings.CreateListing(r.Context(), actorFrom(r), usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Location:    req.Location,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	listing, err := h.listings.UpdateListing(r.Context(), actorFrom(r), chi.URLParam(r, "id"), usecase.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Location:    req.Location,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleMarkSold(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.MarkSold(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.listings.DeleteListing(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadPhoto accepts a multipart "file" field.
func (h *ListingHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxPhotoSize+(1<<20))
	if err := r.ParseMultipartForm(usecase.MaxPhotoSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, r, domain.ErrPhotoTooLarge)
			return
		}
		writeError(w, h.logger, r, badRequest("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, r, badRequest("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxPhotoSize+1))
	if err != nil {
		writeError(w, h.logger, r, badRequest("failed to read file: %v", err))
		return
	}
	url, err := h.photos.UploadPhoto(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"photoUrl": url})
}
