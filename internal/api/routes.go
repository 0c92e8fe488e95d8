package api

import (
	"net/http"
	"time"

	"market-pulse/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Long-lived websocket connections skip the request timeout
		r.Get("/stream", h.HandleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second))

			// Health check
			r.Get("/health", h.HandleHealth)

			// Market data
			r.Get("/indices", h.HandleGetIndices)
			r.Get("/overview", h.HandleGetOverview)

			// Sentiment
			r.Post("/analyze", h.HandleAnalyze)
			r.Route("/sentiment", func(r chi.Router) {
				r.Get("/{symbol}", h.HandleGetSentiment)
				r.Get("/{symbol}/history", h.HandleGetSentimentHistory)
			})
		})
	})

	return r
}
