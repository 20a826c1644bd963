package search

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryParser is the never-failing parser the service relies on.
type QueryParser interface {
	Parse(ctx context.Context, query string) Filters
}

type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type Result struct {
	Filters Filters           `json:"filters"`
	Total   int               `json:"total"`
	Results []*domain.Listing `json:"results"`
}

type Service struct {
	parser   QueryParser
	listings domain.ListingRepository
	log      *logger.Logger
	metrics  *metrics.MetricsManager
	tracer   trace.Tracer
}

func NewService(parser QueryParser, listings domain.ListingRepository, log *logger.Logger, m *metrics.MetricsManager) *Service {
	return &Service{
		parser:   parser,
		listings: listings,
		log:      log.Named("search"),
		metrics:  m,
		tracer:   otel.Tracer("marketplace/search"),
	}
}

// NaturalLanguage parses question into filters and runs them. Parser failures
// never surface; only repository errors do.
func (s *Service) NaturalLanguage(ctx context.Context, question string, page Page) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "search.NaturalLanguage")
	defer span.End()

	f := s.parser.Parse(ctx, question)
	span.SetAttributes(
		attribute.StringSlice("search.keywords", f.Keywords),
		attribute.String("search.category", f.CategoryOrEmpty()),
		attribute.String("search.sort_by", string(f.SortBy)),
	)
	s.log.Debug("Parsed search query", zap.String("question", question), zap.Any("filters", f))
	return s.run(ctx, f, page)
}

// Advanced runs caller-supplied filters without any parsing.
func (s *Service) Advanced(ctx context.Context, f Filters, page Page) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "search.Advanced")
	defer span.End()

	if f.Keywords == nil {
		f.Keywords = []string{}
	}
	if !f.SortBy.Valid() {
		f.SortBy = SortRecent
	}
	return s.run(ctx, f, page)
}

func (s *Service) run(ctx context.Context, f Filters, page Page) (*Result, error) {
	candidates, err := s.listings.FindByFilter(ctx, domain.Filter{
		Status:   domain.StatusApproved,
		Category: f.CategoryOrEmpty(),
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
	})
	if err != nil {
		s.log.Error("Failed to load search candidates", zap.Error(err))
		return nil, fmt.Errorf("search.Service: load candidates: %w", err)
	}

	matched := Apply(f, candidates, ApplyOptions{})
	if s.metrics != nil {
		s.metrics.SearchResults.Observe(float64(len(matched)))
	}

	page = page.normalize()
	return &Result{
		Filters: f,
		Total:   len(matched),
		Results: paginate(matched, page),
	}, nil
}

func paginate(items []*domain.Listing, p Page) []*domain.Listing {
	if p.Offset >= len(items) {
		return []*domain.Listing{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
