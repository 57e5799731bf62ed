package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrwolf/hallmark-server/internal/config"
	"github.com/mrwolf/hallmark-server/internal/logger"
)

func NewRouter(cfg *config.Config, handlers *Handlers, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(log))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// Pages
	r.With(handlers.recoverPage(msgGenerationFailed)).Get("/", handlers.Index)
	r.With(handlers.recoverPage(msgOriginalFailed)).Get("/original", handlers.Original)

	r.Get("/health", handlers.Health)

	// Images
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticPath))))

	// API v1 routes
	limiter := NewRateLimiter(cfg.RateLimit, time.Minute)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)
		r.Use(handlers.recoverJSON)

		r.With(RateLimitMiddleware(limiter)).Get("/movies", handlers.Movies)
		r.Get("/original", handlers.OriginalMovie)
		r.Get("/featured", handlers.Featured)
		r.Get("/featured/history", handlers.FeaturedHistory)
	})

	return r
}
