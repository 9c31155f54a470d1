package handlers

import (
	"net/http"

	"wardrobe/internal/metrics"
)

// Metrics serves the Prometheus registry.
func (a *App) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}
