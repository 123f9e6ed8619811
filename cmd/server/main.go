// Package main is the entry point for the recipe-share API server.
//
// The main package stays minimal: read configuration, build the logger,
// hand both to internal/server and block until shutdown. Everything else
// lives in the internal packages so it can be tested without a process.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/recipe-share/internal/config"
	"github.com/sakif/recipe-share/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Environment variables, optionally preloaded from a .env file.
	// See internal/config for every variable and its default.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// LOG_LEVEL picks the minimum level; debug is handy while developing.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// === 3. CREATE AND START THE SERVER ===
	// New opens the database and any optional integrations (Redis, S3,
	// GitHub OAuth). A bad database is fatal; the integrations are not.
	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
