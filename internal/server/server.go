package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jetski/internal/app"
)

const defaultShutdownTimeout = 10 * time.Second

// Run serves the API until ctx is cancelled or the process receives
// SIGINT/SIGTERM, then shuts down gracefully.
func Run(ctx context.Context, svc *app.Service) error {
	cfg := svc.Config()

	handler := NewHandler(app.NewPipeline(svc), cfg.Server.HistoryLimit)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-shutdown:
	case <-ctx.Done():
	}

	slog.Info("Starting graceful shutdown")

	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed, forcing close", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			return fmt.Errorf("could not stop server: shutdown error: %v, close error: %v", err, closeErr)
		}
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}

	slog.Info("Server stopped cleanly")
	return nil
}
