package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wallgrid/internal/config"
	"wallgrid/internal/gallery"
	"wallgrid/internal/identity"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, identitySvc *identity.Service, gallerySvc *gallery.Service, statsSvc *gallery.StatsService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSessionTokenMiddleware())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(identitySvc, cfg.FrontendURL, cfg.OAuthSuccessURL, cfg.OAuthFailureURL, cfg.Environment, logger)
	galleryHandler := NewGalleryHandler(gallerySvc, statsSvc, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/me", authHandler.Me)
			r.Delete("/session", authHandler.Logout)
			r.Get("/google", authHandler.InitiateGoogle)
			r.Get("/google/callback", authHandler.CallbackGoogle)
		})

		r.Route("/wallpapers", func(r chi.Router) {
			r.Get("/", galleryHandler.List)
			r.Get("/search", galleryHandler.Search)
			r.Post("/", galleryHandler.Upload)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", galleryHandler.Delete)
				r.Get("/stats", galleryHandler.Stats)
				r.Get("/preview", galleryHandler.Preview)
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
