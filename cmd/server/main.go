// Package main is the entry point for the guild management backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guild-backend/internal/api"
	"guild-backend/internal/auth"
	"guild-backend/internal/config"
	"guild-backend/internal/handler"
	"guild-backend/internal/pkg/db"
	"guild-backend/internal/pkg/lock"
	"guild-backend/internal/repository"
	"guild-backend/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	squadRepo := repository.NewSquadRepository(dbPool.Pool)
	screenshotRepo := repository.NewScreenshotRepository(dbPool.Pool)
	leaderboardRepo := repository.NewLeaderboardRepository(dbPool.Pool)
	settingsRepo := repository.NewSettingsRepository(dbPool.Pool)

	// Initialize auth primitives
	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	squadLock := lock.NewSquadLock()

	// Initialize services
	identityService := service.NewIdentityService(userRepo, squadRepo, hasher, tokens)
	squadService := service.NewSquadService(squadRepo, userRepo, squadLock)
	screenshotService := service.NewScreenshotService(screenshotRepo, userRepo, cfg.Scoring.ApprovalPoints)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, userRepo)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Site)

	// Build the route tree
	router := api.NewRouter(api.Handlers{
		Auth:        handler.NewAuthHandler(identityService),
		Screenshot:  handler.NewScreenshotHandler(screenshotService),
		Squad:       handler.NewSquadHandler(squadService),
		SquadAdmin:  handler.NewSquadAdminHandler(squadService),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService),
		Settings:    handler.NewSettingsHandler(settingsService),
	}, auth.NewMiddleware(tokens), dbPool)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server is starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}
