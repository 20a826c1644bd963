// Package admin aggregates marketplace counters for the moderation dashboard.
package admin

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"golang.org/x/sync/errgroup"
)

type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

type ListingCounter interface {
	Counts(ctx context.Context) (domain.Counts, error)
}

type ReportCounter interface {
	CountOpen(ctx context.Context) (int64, error)
}

type Summary struct {
	Users       int64 `json:"users"`
	Listings    int64 `json:"listings"`
	Pending     int64 `json:"pendingListings"`
	Approved    int64 `json:"approvedListings"`
	Rejected    int64 `json:"rejectedListings"`
	Sold        int64 `json:"soldListings"`
	OpenReports int64 `json:"openReports"`
}

type SummaryService struct {
	users    UserCounter
	listings ListingCounter
	reports  ReportCounter
}

func NewSummaryService(users UserCounter, listings ListingCounter, reports ReportCounter) *SummaryService {
	return &SummaryService{users: users, listings: listings, reports: reports}
}

// Summary queries the three counters concurrently.
func (s *SummaryService) Summary(ctx context.Context) (Summary, error) {
	var (
		out    Summary
		counts domain.Counts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.CountUsers(gctx)
		out.Users = n
		return err
	})
	g.Go(func() error {
		c, err := s.listings.Counts(gctx)
		counts = c
		return err
	})
	g.Go(func() error {
		n, err := s.reports.CountOpen(gctx)
		out.OpenReports = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	out.Listings = counts.Total
	out.Pending = counts.Pending
	out.Approved = counts.Approved
	out.Rejected = counts.Rejected
	out.Sold = counts.Sold
	return out, nil
}
