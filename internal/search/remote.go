package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultRemoteTimeout = 5 * time.Second
	DefaultMemoSize      = 128
)

// Completer sends a single prompt to a language model and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RemoteParser delegates query understanding to a language model and
// validates whatever comes back before trusting it.
type RemoteParser struct {
	completer Completer
	timeout   time.Duration
	memo      *lru.Cache[string, Filters]
}

type RemoteOption func(*RemoteParser)

// WithTimeout bounds the whole remote call, including the wait for the reply.
func WithTimeout(d time.Duration) RemoteOption {
	return func(p *RemoteParser) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithMemoSize sets how many successful parses are remembered. Zero disables memoisation.
func WithMemoSize(n int) RemoteOption {
	return func(p *RemoteParser) {
		p.memo = nil
		if n > 0 {
			p.memo, _ = lru.New[string, Filters](n)
		}
	}
}

func NewRemoteParser(c Completer, opts ...RemoteOption) *RemoteParser {
	p := &RemoteParser{completer: c, timeout: DefaultRemoteTimeout}
	WithMemoSize(DefaultMemoSize)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type completion struct {
	text string
	err  error
}

func (p *RemoteParser) Parse(ctx context.Context, query string) (Filters, error) {
	if p.memo != nil {
		if f, ok := p.memo.Get(query); ok {
			return f.Clone(), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := p.completer.Complete(ctx, BuildPrompt(query))
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-ctx.Done():
		return Filters{}, &RemoteParseError{Kind: FailureTimeout, Err: ctx.Err()}
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return Filters{}, &RemoteParseError{Kind: FailureTimeout, Err: res.err}
		}
		return Filters{}, &RemoteParseError{Kind: FailureTransport, Err: res.err}
	}

	f, err := decodeCompletion(res.text)
	if err != nil {
		return Filters{}, &RemoteParseError{Kind: FailureMalformed, Err: err}
	}
	if p.memo != nil {
		p.memo.Add(query, f.Clone())
	}
	return f, nil
}

// BuildPrompt renders the instruction sent to the model for query.
func BuildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("You convert shopping queries for a university campus marketplace into search filters.\n")
	b.WriteString("Reply with a single JSON object and nothing else. It must have exactly these keys:\n")
	b.WriteString(`  "keywords": array of at most 5 lowercase search terms (keep course codes like "cmpe202"),` + "\n")
	b.WriteString(`  "category": one of ` + quotedList(domain.Categories) + " or null,\n")
	b.WriteString(`  "min_price": number or null,` + "\n")
	b.WriteString(`  "max_price": number or null,` + "\n")
	b.WriteString(`  "sort_by": one of "recent", "price_asc", "price_desc".` + "\n")
	b.WriteString("Rules: leave out filler words such as item, stuff or listing; ")
	b.WriteString("\"cheap\" means max_price 50 unless a price is stated; ")
	b.WriteString("\"cheapest\" means price_asc and \"most expensive\" means price_desc; default sort_by is \"recent\".\n\n")
	b.WriteString("Examples:\n")
	for _, ex := range promptExamples {
		fmt.Fprintf(&b, "Query: %s\nJSON: %s\n", ex.query, ex.json)
	}
	fmt.Fprintf(&b, "\nQuery: %s\nJSON:", query)
	return b.String()
}

var promptExamples = []struct{ query, json string }{
	{"cheap laptop under $500", `{"keywords":["laptop"],"category":"gadgets","min_price":null,"max_price":500,"sort_by":"recent"}`},
	{"textbook for cmpe202 under $30", `{"keywords":["cmpe202","textbook"],"category":"textbooks","min_price":null,"max_price":30,"sort_by":"recent"}`},
	{"affordable furniture between $100 and $300, cheapest first", `{"keywords":["furniture"],"category":"furniture","min_price":100,"max_price":300,"sort_by":"price_asc"}`},
	{"newest gadgets", `{"keywords":[],"category":"gadgets","min_price":null,"max_price":null,"sort_by":"recent"}`},
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}

func decodeCompletion(raw string) (Filters, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &obj); err != nil {
		return Filters{}, fmt.Errorf("decode completion: %w", err)
	}
	if obj == nil {
		return Filters{}, errors.New("completion is not a JSON object")
	}

	f := NewFilters()
	f.Keywords = remoteKeywords(obj["keywords"])
	if s, ok := obj["category"].(string); ok {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			f.Category = &s
		}
	}
	f.MinPrice = coercePrice(obj["min_price"])
	f.MaxPrice = coercePrice(obj["max_price"])
	if s, ok := obj["sort_by"].(string); ok {
		f.SortBy = ParseSortOrder(s)
	}
	return f, nil
}

// stripFences removes a surrounding markdown code fence, tagged json or bare.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```"} {
		if _, after, ok := strings.Cut(s, fence); ok {
			body, _, _ := strings.Cut(after, "```")
			return strings.TrimSpace(body)
		}
	}
	return s
}

func remoteKeywords(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, generic := genericWords[s]; generic {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func coercePrice(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$")), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
