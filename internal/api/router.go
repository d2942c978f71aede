package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nattapongd/Fund-Compare-Backend/internal/api/handlers"
	custommiddleware "github.com/nattapongd/Fund-Compare-Backend/internal/api/middleware"
	"github.com/nattapongd/Fund-Compare-Backend/internal/config"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// Services bundles the service dependencies the router needs.
type Services struct {
	System         *service.SystemService
	Fund           *service.FundService
	Ranking        *service.RankingService
	PeerStats      *service.PeerStatsService
	Classification *service.ClassificationService
	Settings       *service.SettingsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(svc.Fund)
			peerHandler := handlers.NewPeerHandler(svc.Ranking, svc.PeerStats)
			r.Get("/", fundHandler.Funds)
			r.Get("/{identifier}", fundHandler.Fund)
			r.Get("/{identifier}/peer-rank", peerHandler.FundPeerRank)
		})

		r.Route("/peer-rank", func(r chi.Router) {
			peerHandler := handlers.NewPeerHandler(svc.Ranking, svc.PeerStats)
			r.Post("/batch", peerHandler.BatchPeerRank)
		})

		r.Route("/peer-stats", func(r chi.Router) {
			peerHandler := handlers.NewPeerHandler(svc.Ranking, svc.PeerStats)
			r.Get("/", peerHandler.PeerStats)
		})

		r.Route("/settings", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(svc.Settings)
			r.Get("/sec-keys", settingsHandler.SECKeysStatus)
			r.Post("/sec-keys", settingsHandler.SetSECKeys)
		})

		r.Route("/peer-classification", func(r chi.Router) {
			classificationHandler := handlers.NewClassificationHandler(svc.Classification)
			r.Post("/run", classificationHandler.Run)
		})
	})

	return r
}
