package router

import (
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Listing *handler.ListingHandler
	Search  *handler.SearchHandler
	Chat    *handler.ChatHandler
	Report  *handler.ReportHandler
	Admin   *handler.AdminHandler
}

// New builds the service router. Nil handlers leave their routes unmounted.
func New(h Handlers, tokens middleware.TokenVerifier, allowedOrigins string, m *metrics.MetricsManager, log *logger.Logger) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.RequestLogger(log))
	if m != nil {
		mux.Use(middleware.Metrics(m))
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/healthz", handler.HandleHealth)

	if h.Auth != nil {
		SetupAuthRoutes(mux, h.Auth, tokens, log)
	}
	if h.Listing != nil {
		SetupListingRoutes(mux, h.Listing, tokens, log)
	}
	if h.Search != nil {
		SetupSearchRoutes(mux, h.Search)
	}
	if h.Chat != nil {
		SetupChatRoutes(mux, h.Chat, tokens, log)
	}
	if h.Report != nil {
		SetupReportRoutes(mux, h.Report, tokens, log)
	}
	if h.Admin != nil {
		SetupAdminRoutes(mux, h.Admin, tokens, log)
	}
	return mux
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
