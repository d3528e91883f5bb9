package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vainnor/reflector-dashboard/api"
	"github.com/vainnor/reflector-dashboard/collector"
	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/db"
	"github.com/vainnor/reflector-dashboard/logging"
	"github.com/vainnor/reflector-dashboard/portal"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logging.Warn().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := collector.NewCollector(cfg.Reflector)
	router := api.NewRouter(api.NewHandler(c, cfg))

	if cfg.Portal.Enabled {
		if err := db.InitDB(ctx, cfg.Database); err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.CloseDB()

		p, err := portal.New(cfg.Portal)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize portal")
		}
		p.RegisterRoutes(router)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("xml_file", cfg.Reflector.XMLFile).
			Bool("portal", cfg.Portal.Enabled).
			Msg("starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
