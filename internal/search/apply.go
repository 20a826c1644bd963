package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/samber/lo"
)

type ApplyOptions struct {
	// IncludeHidden keeps listings that are not approved.
	IncludeHidden bool
}

// Apply returns the candidates satisfying f, ordered by f.SortBy. Equal sort
// keys keep their candidate order. The input slice is not modified.
func Apply(f Filters, candidates []*domain.Listing, opts ApplyOptions) []*domain.Listing {
	keywords := lo.Map(f.Keywords, func(k string, _ int) string { return strings.ToLower(k) })

	out := lo.Filter(candidates, func(l *domain.Listing, _ int) bool {
		return l != nil && matches(f, keywords, l, opts)
	})

	switch f.SortBy {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b *domain.Listing) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b *domain.Listing) int { return cmp.Compare(b.Price, a.Price) })
	default:
		slices.SortStableFunc(out, func(a, b *domain.Listing) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return out
}

func matches(f Filters, keywords []string, l *domain.Listing, opts ApplyOptions) bool {
	if !opts.IncludeHidden && !l.Visible() {
		return false
	}
	if f.Category != nil && l.Category != *f.Category {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(l.Title)
	desc := strings.ToLower(l.Description)
	for _, k := range keywords {
		if !strings.Contains(title, k) && !strings.Contains(desc, k) {
			return false
		}
	}
	return true
}
