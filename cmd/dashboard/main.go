package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginilab/go-desforecaster/internal/config"
	"github.com/ginilab/go-desforecaster/internal/logging"
	"github.com/ginilab/go-desforecaster/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger, nil)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Preload(); err != nil {
		logger.Error("failed to load dataset", "path", cfg.Data.Path, "error", err)
		closer.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
