package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wardrobe/internal/http/handlers"
	httpapi "wardrobe/internal/http/httpapi"
	"wardrobe/internal/imageref"
	"wardrobe/internal/infra"
	"wardrobe/internal/normalize"
	"wardrobe/internal/relay"
	"wardrobe/internal/wardrobe"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	rl, err := relay.New(relay.Options{
		BaseURL: cfg.BackendURL,
		AnonKey: cfg.AnonKey,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure relay")
	}

	norm := normalize.New(normalize.Options{
		Resolver: imageref.Resolver{StorageBaseURL: cfg.BackendURL, Origin: cfg.PublicOrigin},
		Logger:   &logger,
	})

	// Wardrobe lookups and attempt logging need a database; the relay does not.
	var repo *wardrobe.Repo
	if cfg.HasDatabase() {
		dbpool, err := infra.NewDBPool(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		repo = wardrobe.NewRepo(infra.NewSQLRunner(dbpool, logger), cfg.DefaultUserID)
	} else {
		logger.Warn().Msg("DATABASE_URL not set; wardrobe routes disabled")
	}

	app := handlers.NewApp(cfg, logger, rl, norm, repo)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
