package search

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const (
	pathRemote    = "remote"
	pathHeuristic = "heuristic"
)

// FallbackParser tries the remote parser once and falls back to the heuristic
// parser on any failure. With no remote parser it runs heuristic-only.
type FallbackParser struct {
	remote    Parser
	heuristic *HeuristicParser
	log       *logger.Logger
	metrics   *metrics.MetricsManager
}

// NewFallbackParser accepts a nil remote for heuristic-only mode. metrics may be nil.
func NewFallbackParser(remote Parser, log *logger.Logger, m *metrics.MetricsManager) *FallbackParser {
	p := &FallbackParser{
		remote:    remote,
		heuristic: NewHeuristicParser(),
		log:       log.Named("query_parser"),
		metrics:   m,
	}
	if remote == nil {
		p.log.Info("No remote parser configured, natural-language search runs heuristic-only")
	}
	return p
}

func (p *FallbackParser) RemoteEnabled() bool { return p.remote != nil }

// Parse always yields filters; remote failures are logged and absorbed.
func (p *FallbackParser) Parse(ctx context.Context, query string) Filters {
	if p.remote == nil {
		return p.parseHeuristic(query)
	}

	f, err := p.remote.Parse(ctx, query)
	if err == nil {
		p.count(pathRemote)
		return f
	}

	kind := FailureKindOf(err)
	p.log.Warn("Remote query parse failed, using heuristic parser",
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	if p.metrics != nil {
		p.metrics.SearchFallbacksTotal.WithLabelValues(string(kind)).Inc()
	}
	return p.parseHeuristic(query)
}

func (p *FallbackParser) parseHeuristic(query string) Filters {
	p.count(pathHeuristic)
	return ParseText(query)
}

func (p *FallbackParser) count(path string) {
	if p.metrics != nil {
		p.metrics.SearchParsesTotal.WithLabelValues(path).Inc()
	}
}
