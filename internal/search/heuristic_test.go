package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		min, max *float64
		category *string
		sortBy   SortOrder
		keywords []string
	}{
		{
			name:     "no price phrase leaves bounds unset",
			query:    "desk lamp",
			category: ptr("furniture"),
			sortBy:   SortRecent,
			keywords: []string{"desk", "lamp"},
		},
		{
			name:     "explicit range",
			query:    "between $20 and $50",
			min:      ptr(20.0),
			max:      ptr(50.0),
			sortBy:   SortRecent,
			keywords: []string{},
		},
		{
			name:     "range wins over budget adjective",
			query:    "cheap textbook between $20 and $50",
			min:      ptr(20.0),
			max:      ptr(50.0),
			category: ptr("textbooks"),
			sortBy:   SortRecent,
			keywords: []string{"textbook"},
		},
		{
			name:     "range with to and cents",
			query:    "jacket between 10.50 to 30",
			min:      ptr(10.5),
			max:      ptr(30.0),
			category: ptr("clothing"),
			sortBy:   SortRecent,
			keywords: []string{"jacket"},
		},
		{
			name:     "cheap laptop",
			query:    "cheap laptop",
			max:      ptr(50.0),
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"laptop"},
		},
		{
			name:     "course code survives stop word filtering",
			query:    "textbook for cmpe202 under $30",
			max:      ptr(30.0),
			category: ptr("textbooks"),
			sortBy:   SortRecent,
			keywords: []string{"cmpe202", "textbook"},
		},
		{
			name:     "independent lower and upper bounds",
			query:    "laptop over $200 under $800",
			min:      ptr(200.0),
			max:      ptr(800.0),
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"laptop"},
		},
		{
			name:     "affordable",
			query:    "Affordable chair",
			max:      ptr(100.0),
			category: ptr("furniture"),
			sortBy:   SortRecent,
			keywords: []string{"chair"},
		},
		{
			name:     "inexpensive is not a luxury word",
			query:    "inexpensive desk",
			max:      ptr(75.0),
			category: ptr("furniture"),
			sortBy:   SortRecent,
			keywords: []string{"desk"},
		},
		{
			name:     "explicit max beats adjective",
			query:    "cheap phone under 100 dollars",
			max:      ptr(100.0),
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"phone"},
		},
		{
			name:     "budget adjective with explicit min",
			query:    "budget bike over 30",
			min:      ptr(30.0),
			max:      ptr(60.0),
			category: ptr("sports"),
			sortBy:   SortRecent,
			keywords: []string{"bike"},
		},
		{
			name:     "luxury sets a floor",
			query:    "luxury watch",
			min:      ptr(500.0),
			sortBy:   SortRecent,
			keywords: []string{"watch"},
		},
		{
			name:     "most expensive is a sort cue",
			query:    "most expensive laptop",
			category: ptr("gadgets"),
			sortBy:   SortPriceDesc,
			keywords: []string{"laptop"},
		},
		{
			name:     "cheapest first",
			query:    "cheapest textbooks",
			category: ptr("textbooks"),
			sortBy:   SortPriceAsc,
			keywords: []string{"textbooks"},
		},
		{
			name:     "newest gadgets",
			query:    "newest gadgets",
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"gadgets"},
		},
		{
			name:     "decimal maximum",
			query:    "shoes up to $45.50",
			max:      ptr(45.5),
			category: ptr("clothing"),
			sortBy:   SortRecent,
			keywords: []string{"shoes"},
		},
		{
			name:     "course code first then words",
			query:    "math101 calculator",
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"math101", "calculator"},
		},
		{
			name:     "keywords deduplicated",
			query:    "laptop laptop bag",
			category: ptr("gadgets"),
			sortBy:   SortRecent,
			keywords: []string{"laptop", "bag"},
		},
		{
			name:     "keywords capped at five",
			query:    "red blue green yellow purple orange",
			sortBy:   SortRecent,
			keywords: []string{"red", "blue", "green", "yellow", "purple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseText(tt.query)
			assert.Equal(t, tt.min, f.MinPrice, "min price")
			assert.Equal(t, tt.max, f.MaxPrice, "max price")
			assert.Equal(t, tt.category, f.Category, "category")
			assert.Equal(t, tt.sortBy, f.SortBy, "sort")
			assert.Equal(t, tt.keywords, f.Keywords, "keywords")
		})
	}
}

func TestParseText_Total(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"!!!???...",
		"$$$ between and to",
		"under $",
		"\xff\xfe invalid utf8",
		"日本語のテキスト",
		strings.Repeat("laptop under $30 ", 5000),
		strings.Repeat("a", 100000),
	}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			f := ParseText(in)
			assert.NotNil(t, f.Keywords)
			assert.LessOrEqual(t, len(f.Keywords), maxKeywords)
			assert.True(t, f.SortBy.Valid())
		})
	}
}

func TestParseText_EmptyYieldsUnconstrainedFilters(t *testing.T) {
	for _, in := range []string{"", "!!!", "the a an"} {
		assert.Equal(t, NewFilters(), ParseText(in), "input %q", in)
	}
}

func TestHeuristicParser_NeverFails(t *testing.T) {
	f, err := NewHeuristicParser().Parse(context.Background(), "cheap laptop")
	require.NoError(t, err)
	assert.Equal(t, ParseText("cheap laptop"), f)
}
