// Package api wires the HTTP transport for the site lifecycle controller.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/geostacks/sitehost/internal/api/handler"
	"github.com/geostacks/sitehost/internal/api/middleware"
	"github.com/geostacks/sitehost/internal/service"
)

// NewRouter creates a new HTTP router with all routes configured. An empty
// apiKey disables authentication.
func NewRouter(sites *service.SiteService, apiKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(apiKey))

		siteHandler := handler.NewSiteHandler(sites)
		r.Get("/sites", siteHandler.List)
		r.Post("/sites", siteHandler.Create)
		r.Get("/site/{id}", siteHandler.Get)
		r.Delete("/site/{id}", siteHandler.Delete)
	})

	return r
}
