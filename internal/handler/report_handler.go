package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/usecase"
)

type ReportHandler struct {
	reports *usecase.ReportUsecase
	logger  *logger.Logger
}

func NewReportHandler(reports *usecase.ReportUsecase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: log.Named("report_handler")}
}

type createReportRequest struct {
	ListingID string `json:"listingId" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

func (h *ReportHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	report, err := h.reports.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req.ListingID, req.Reason)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
