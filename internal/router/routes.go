package router

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

func SetupAuthRoutes(mux *chi.Mux, h *handler.AuthHandler, tokens middleware.TokenVerifier, log *logger.Logger) {
	mux.Post("/auth/register", h.HandleRegister)
	mux.Post("/auth/login", h.HandleLogin)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens, log))
		r.Get("/users/me", h.HandleMe)
	})
}

func SetupListingRoutes(mux *chi.Mux, h *handler.ListingHandler, tokens middleware.TokenVerifier, log *logger.Logger) {
	mux.Get("/listings", h.HandleBrowse)
	mux.Get("/listings/{id}", h.HandleGet)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens, log))

		r.Post("/listings/upload", h.HandleUploadPhoto)
		r.Patch("/listings/{id}", h.HandleUpdate)
		r.Patch("/listings/{id}/sold", h.HandleMarkSold)
		r.Delete("/listings/{id}", h.HandleDelete)

		r.With(middleware.RequireRole("seller")).Post("/listings", h.HandleCreate)
	})
}

func SetupSearchRoutes(mux *chi.Mux, h *handler.SearchHandler) {
	mux.Post("/search/nl", h.HandleNaturalLanguage)
	mux.Get("/search/advanced", h.HandleAdvanced)
}

func SetupChatRoutes(mux *chi.Mux, h *handler.ChatHandler, tokens middleware.TokenVerifier, log *logger.Logger) {
	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens, log))

		r.Post("/chat/rooms", h.HandleOpenRoom)
		r.Get("/chat/rooms", h.HandleListRooms)
		r.Get("/chat/rooms/{roomId}/history", h.HandleHistory)
		r.Get("/ws/chat/{roomId}", h.HandleWebSocket)
	})
}

func SetupReportRoutes(mux *chi.Mux, h *handler.ReportHandler, tokens middleware.TokenVerifier, log *logger.Logger) {
	mux.With(middleware.JWTAuth(tokens, log)).Post("/reports", h.HandleCreate)
}

func SetupAdminRoutes(mux *chi.Mux, h *handler.AdminHandler, tokens middleware.TokenVerifier, log *logger.Logger) {
	mux.Route("/admin", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens, log), middleware.RequireRole("admin"))

		r.Get("/summary", h.HandleSummary)

		r.Get("/listings", h.HandleListListings)
		r.Get("/listings/pending", h.HandlePendingListings)
		r.Patch("/listings/{id}", h.HandleModerate)
		r.Patch("/listings/{id}/approve", h.HandleApprove)
		r.Patch("/listings/{id}/reject", h.HandleReject)
		r.Delete("/listings/{id}", h.HandleDeleteListing)

		r.Get("/users", h.HandleListUsers)
		r.Delete("/users/{id}", h.HandleDeleteUser)

		r.Get("/reports", h.HandleListReports)
		r.Patch("/reports/{id}/resolve", h.HandleResolveReport)
	})
}
