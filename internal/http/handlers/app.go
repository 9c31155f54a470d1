package handlers

import (
	"encoding/json"
	"net/http"

	"wardrobe/internal/infra"
	"wardrobe/internal/normalize"
	"wardrobe/internal/relay"
	"wardrobe/internal/tryon"
	"wardrobe/internal/wardrobe"
)

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Relay      *relay.Relay
	Normalizer *normalize.Normalizer
	// Wardrobe is nil when no database is configured.
	Wardrobe *wardrobe.Repo
	Recorder tryon.Recorder
}

// NewApp wires handlers around a relay. repo may be nil.
func NewApp(cfg *infra.Config, logger infra.Logger, rl *relay.Relay, norm *normalize.Normalizer, repo *wardrobe.Repo) *App {
	app := &App{Config: cfg, Logger: logger, Relay: rl, Normalizer: norm, Wardrobe: repo}
	if repo != nil {
		app.Recorder = repo
	}
	return app
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// proxyError mirrors the flat {"error": "..."} body of the relay routes.
func (a *App) proxyError(w http.ResponseWriter, status int, message string) {
	a.json(w, status, map[string]string{"error": message})
}
