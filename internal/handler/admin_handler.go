package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/admin"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	listingusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	reportusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/usecase"
	userdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/domain"
	userusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/usecase"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	summary  *admin.SummaryService
	listings *listingusecase.ListingUsecase
	users    *userusecase.UserUsecase
	reports  *reportusecase.ReportUsecase
	logger   *logger.Logger
}

func NewAdminHandler(
	summary *admin.SummaryService,
	listings *listingusecase.ListingUsecase,
	users *userusecase.UserUsecase,
	reports *reportusecase.ReportUsecase,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		summary:  summary,
		listings: listings,
		users:    users,
		reports:  reports,
		logger:   log.Named("admin_handler"),
	}
}

type moderateRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	IsSold *bool   `json:"isSold"`
}

func (h *AdminHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.summary.Summary(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	in, err := browseInput(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	h.writeListings(w, r, in)
}

func (h *AdminHandler) HandlePendingListings(w http.ResponseWriter, r *http.Request) {
	in, err := browseInput(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	in.Status = domain.StatusPending
	h.writeListings(w, r, in)
}

func (h *AdminHandler) writeListings(w http.ResponseWriter, r *http.Request, in listingusecase.BrowseInput) {
	listings, err := h.listings.AdminList(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *AdminHandler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	in := listingusecase.ModerationInput{IsSold: req.IsSold}
	if req.Status != nil {
		s := domain.ListingStatus(*req.Status)
		in.Status = &s
	}
	h.moderate(w, r, in)
}

func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	s := domain.StatusApproved
	h.moderate(w, r, listingusecase.ModerationInput{Status: &s})
}

func (h *AdminHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	s := domain.StatusRejected
	h.moderate(w, r, listingusecase.ModerationInput{Status: &s})
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, in listingusecase.ModerationInput) {
	listing, err := h.listings.Moderate(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *AdminHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	actor := domain.Actor{UserID: middleware.UserIDFromContext(r.Context()), IsAdmin: true}
	if err := h.listings.DeleteListing(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	out := make([]userdomain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == middleware.UserIDFromContext(r.Context()) {
		writeError(w, h.logger, r, badRequest("administrators cannot delete themselves"))
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), r.URL.Query().Get("open") == "true")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *AdminHandler) HandleResolveReport(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Resolve(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
