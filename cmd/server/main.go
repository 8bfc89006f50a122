package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bcnelson/sentinelguard/internal/api"
	"github.com/bcnelson/sentinelguard/internal/app"
	"github.com/bcnelson/sentinelguard/internal/auth"
	"github.com/bcnelson/sentinelguard/internal/config"
	"github.com/bcnelson/sentinelguard/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := logging.GetLogger()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		l := logging.GetLogger()
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := logging.Init(cfg.Log); err != nil {
		l := logging.GetLogger()
		l.Fatal().Err(err).Msg("failed to initialize logging")
	}
	logger := logging.WithComponent("server")

	application, err := app.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	var oidcComponents *api.OIDCComponents
	if cfg.OIDC.Enabled {
		oidcComponents, err = newOIDCComponents(&cfg.OIDC)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize OIDC")
		}
		logger.Info().Str("issuer", cfg.OIDC.IssuerURL).Msg("OIDC login enabled")
	}

	router := api.NewRouter(application.Services(), oidcComponents, logging.WithComponent("http"))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Executor.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info().Str("addr", cfg.Server.Addr()).Msg("starting SentinelGuard")

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server stopped")
}

func newOIDCComponents(cfg *config.OIDCConfig) (*api.OIDCComponents, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := auth.NewOIDCProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secret, err := cfg.GetSessionSecretBytes()
	if err != nil {
		return nil, err
	}

	secure := strings.HasPrefix(cfg.RedirectURL, "https://")

	sessions, err := auth.NewSessionManager(secret, cfg.SessionDuration, secure)
	if err != nil {
		return nil, err
	}

	states, err := auth.NewStateStore(secret, secure)
	if err != nil {
		return nil, err
	}

	return &api.OIDCComponents{Provider: provider, Sessions: sessions, States: states}, nil
}
