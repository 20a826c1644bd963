package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	SearchParsesTotal    *prometheus.CounterVec
	SearchFallbacksTotal *prometheus.CounterVec
	SearchResults        prometheus.Histogram

	ChatMessagesTotal         prometheus.Counter
	ChatDeliveryFailuresTotal prometheus.Counter
	ChatSubscribers           prometheus.Gauge

	ListingsModeratedTotal *prometheus.CounterVec

	HTTPRequestLatency *prometheus.HistogramVec
	HTTPErrorsTotal    *prometheus.CounterVec
}

// NewMetricsManager creates and registers every collector under the given namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		SearchParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_parses_total",
			Help:      "Natural-language queries parsed, by the parser that produced the filters.",
		}, []string{"path"}),
		SearchFallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_parser_fallbacks_total",
			Help:      "Remote parse failures that fell back to the heuristic parser, by failure kind.",
		}, []string{"kind"}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of listings matched per search before pagination.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		ChatMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted and broadcast.",
		}),
		ChatDeliveryFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_delivery_failures_total",
			Help:      "Per-subscriber chat delivery failures.",
		}),
		ChatSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_subscribers",
			Help:      "Currently registered chat connections across all rooms.",
		}),
		ListingsModeratedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_moderated_total",
			Help:      "Listing moderation decisions by resulting status.",
		}, []string{"status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		HTTPErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP responses with status >= 400 by route pattern and status code.",
		}, []string{"route", "code"}),
	}

	registry.MustRegister(
		m.SearchParsesTotal,
		m.SearchFallbacksTotal,
		m.SearchResults,
		m.ChatMessagesTotal,
		m.ChatDeliveryFailuresTotal,
		m.ChatSubscribers,
		m.ListingsModeratedTotal,
		m.HTTPRequestLatency,
		m.HTTPErrorsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Server exposes /metrics for the given registry.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

func NewServer(port string, registry *prometheus.Registry, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. A graceful Shutdown is not reported as an error.
func (s *Server) Start() error {
	s.log.Info("Prometheus metrics server starting", zap.String("addr", s.srv.Addr), zap.String("path", "/metrics"))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
