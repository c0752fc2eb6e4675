package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homeboard/homeboard/internal/api"
	"github.com/homeboard/homeboard/internal/auth"
	"github.com/homeboard/homeboard/internal/config"
	"github.com/homeboard/homeboard/internal/factory"
	"github.com/homeboard/homeboard/internal/feed"
	"github.com/homeboard/homeboard/internal/logger"
	"github.com/homeboard/homeboard/internal/render"
	"github.com/homeboard/homeboard/internal/services"
	"github.com/homeboard/homeboard/internal/widget"
)

func main() {
	// Optional driver flag override (postgres | sqlite)
	dbDriver := flag.String("db-driver", "", "Override HOMEBOARD_DB_DRIVER (postgres, sqlite)")
	flag.Parse()

	log := logger.New("homeboard-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbDriver != "" {
		cfg.DBDriver = *dbDriver
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid db-driver override")
		}
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Homeboard service starting…")

	// -------- Storage & content layers -----
	ctx := context.Background()
	st, db, err := factory.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Store unavailable")
	}
	defer func() { _ = db.Close() }()

	repo, err := factory.NewContentRepository(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Content repository unavailable")
	}

	// -------- Service & transport ----------
	svc := services.NewDashboardService(st, repo, widget.NewRegistry(repo))
	tokens := auth.NewTokenManager(cfg.TokenSecret, "homeboard", cfg.TokenTTL)
	handlers := api.NewHandlers(svc, factory.NewAuthorizer(cfg), tokens, cfg.Capability, render.New(), feed.New(cfg.FeedTimeout))

	pinger, ok := st.(api.Pinger)
	if !ok {
		log.Fatal().Msg("Store does not support health pings")
	}
	router := api.NewRouter(handlers, api.NewHealthHandler(pinger))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
