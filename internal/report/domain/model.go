package domain

import (
	"context"
	"errors"
	"time"
)

const MinReasonLength = 3

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReasonTooShort = errors.New("reason must be at least 3 characters")
)

type Report struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	ReporterID string    `json:"reporterId"`
	Reason     string    `json:"reason"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	// List returns reports newest first; unresolvedOnly hides handled ones.
	List(ctx context.Context, unresolvedOnly bool) ([]*Report, error)
	Resolve(ctx context.Context, id string) error
	CountOpen(ctx context.Context) (int64, error)
}
