package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/exclusive-store/storefront/config"
	httpx "github.com/exclusive-store/storefront/internal/http"
)

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Accounts:       services.Accounts,
		Catalog:        services.Catalog,
		Cart:           services.Cart,
		Wishlist:       services.Wishlist,
		Sessions:       services.Sessions,
		Logger:         logger,
		LogoutRedirect: cfg.Session.LogoutRedirect,
	})

	return startServer(logger, handler, cfg.HTTP.Addr)
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and waits for
// in-flight wishlist syncs to settle.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, services ServiceContainer, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Background wishlist syncs outlive their requests; let them finish.
	if services.Wishlist != nil {
		services.Wishlist.Wait()
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
