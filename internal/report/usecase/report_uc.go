package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/domain"
	"go.uber.org/zap"
)

// ListingLookup confirms that a reported listing exists.
type ListingLookup interface {
	FindByID(ctx context.Context, id string) (*listingdomain.Listing, error)
}

type ReportUsecase struct {
	repo     domain.ReportRepository
	listings ListingLookup
	logger   *logger.Logger
	now      func() time.Time
}

func NewReportUsecase(repo domain.ReportRepository, listings ListingLookup, log *logger.Logger) *ReportUsecase {
	return &ReportUsecase{repo: repo, listings: listings, logger: log.Named("report_usecase"), now: time.Now}
}

func (uc *ReportUsecase) Create(ctx context.Context, reporterID, listingID, reason string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < domain.MinReasonLength {
		return nil, domain.ErrReasonTooShort
	}
	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, listingdomain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("ReportUsecase.Create: lookup listing: %w", err)
	}

	report := &domain.Report{
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("ReportUsecase.Create: %w", err)
	}
	uc.logger.Info("Listing reported", zap.String("report_id", report.ID), zap.String("listing_id", listingID))
	return report, nil
}

func (uc *ReportUsecase) List(ctx context.Context, unresolvedOnly bool) ([]*domain.Report, error) {
	reports, err := uc.repo.List(ctx, unresolvedOnly)
	if err != nil {
		return nil, fmt.Errorf("ReportUsecase.List: %w", err)
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return reports, nil
}

func (uc *ReportUsecase) Resolve(ctx context.Context, id string) error {
	if err := uc.repo.Resolve(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return err
		}
		return fmt.Errorf("ReportUsecase.Resolve: %w", err)
	}
	return nil
}

func (uc *ReportUsecase) CountOpen(ctx context.Context) (int64, error) {
	n, err := uc.repo.CountOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("ReportUsecase.CountOpen: %w", err)
	}
	return n, nil
}
