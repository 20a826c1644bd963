package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// HeuristicParser extracts filters with fixed keyword tables and regular
// expressions. It never fails and performs no I/O.
type HeuristicParser struct{}

func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{}
}

func (p *HeuristicParser) Parse(_ context.Context, query string) (Filters, error) {
	return ParseText(query), nil
}

// ParseText is the pure form of the heuristic parser. Each stage sees the text
// left over after earlier stages removed the phrases they consumed.
func ParseText(query string) Filters {
	f := NewFilters()
	lowered := strings.ToLower(strings.TrimSpace(query))

	q := extractPrices(lowered, &f)
	q = applyAdjectives(q, &f)
	f.Category = detectCategory(q)
	f.SortBy = detectSort(q)
	f.Keywords = extractKeywords(lowered, q)
	return f
}

func extractPrices(q string, f *Filters) string {
	if m := priceRangeRe.FindStringSubmatch(q); m != nil {
		f.MinPrice = parsePrice(m[1])
		f.MaxPrice = parsePrice(m[2])
		return strings.ReplaceAll(q, m[0], " ")
	}
	if m := maxPriceRe.FindStringSubmatch(q); m != nil {
		f.MaxPrice = parsePrice(m[1])
		q = strings.Replace(q, m[0], " ", 1)
	}
	if m := minPriceRe.FindStringSubmatch(q); m != nil {
		f.MinPrice = parsePrice(m[1])
		q = strings.Replace(q, m[0], " ", 1)
	}
	return q
}

func applyAdjectives(q string, f *Filters) string {
	for _, rule := range budgetRes {
		if !rule.re.MatchString(q) {
			continue
		}
		if f.MaxPrice == nil {
			f.MaxPrice = ptr(rule.price)
		}
		q = rule.re.ReplaceAllString(q, " ")
	}

	matches := luxuryRe.FindAllStringSubmatchIndex(q, -1)
	if len(matches) == 0 {
		return q
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m[2] >= 0 && q[m[4]:m[5]] == "expensive" {
			continue
		}
		if f.MinPrice == nil {
			f.MinPrice = ptr(luxuryMinimum)
		}
		b.WriteString(q[last:m[0]])
		b.WriteByte(' ')
		last = m[1]
	}
	b.WriteString(q[last:])
	return b.String()
}

func detectCategory(q string) *string {
	for _, rule := range categoryRes {
		if rule.re.MatchString(q) {
			return ptr(rule.category)
		}
	}
	return nil
}

func detectSort(q string) SortOrder {
	for _, cue := range sortCues {
		if cue.re.MatchString(q) {
			return cue.order
		}
	}
	return SortRecent
}

// extractKeywords puts course codes from the untouched text ahead of the
// remaining content words.
func extractKeywords(lowered, q string) []string {
	codes := courseCodeRe.FindAllString(lowered, -1)
	words := lo.Filter(tokenSplitRe.Split(q, -1), func(w string, _ int) bool {
		return len(w) >= 2 && !isStopWord(w)
	})

	keywords := lo.Uniq(append(codes, words...))
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

func parsePrice(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
