package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/exclusive-store/storefront/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting storefront service",
		"api_base_url", cfg.API.BaseURL,
		"storage_backend", cfg.Storage.Backend,
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev)

	store, err := bootstrap.OpenStorage(&cfg, logger)
	if err != nil {
		return err
	}
	if store.Redis != nil {
		defer func() {
			if cerr := store.Redis.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	services := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config: &cfg,
		Store:  store.Store,
		Logger: logger,
	})

	// Resolve the persisted session before serving; handlers read the
	// snapshot and must not observe the loading state.
	services.Sessions.Init(ctx)

	server := bootstrap.StartHTTPServer(&cfg, services, logger)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return bootstrap.ShutdownHTTPServer(ctx, server, services, logger)
}
