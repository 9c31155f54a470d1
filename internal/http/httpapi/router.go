package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wardrobe/internal/http/handlers"
	"wardrobe/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)

	var origins []string
	rateLimit := 0
	if app.Config != nil {
		origins = app.Config.AllowedOrigins
		rateLimit = app.Config.RateLimitPerMin
	}
	r.Use(middleware.CORS(origins))

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", http.HandlerFunc(app.Metrics))

	// Relay routes mirror the browser-facing proxy.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(rateLimit, time.Minute))
		r.Post("/try-on", app.TryOnProxy)
		r.Post("/extract-items", app.ExtractItems)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(rateLimit, time.Minute)).Post("/try-on", app.RunTryOn)
		r.Get("/wardrobe/items", app.ListItems)
		r.Get("/outfits/{id}/items", app.OutfitItems)
	})

	return r
}
