// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scanboard/internal/api"
	"github.com/starford/scanboard/internal/capture"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	a, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := a.config
	logger := newLogger(cfg, a.logOutput)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("analyzer", cfg.Analyzer.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: c.handler(),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Auto-scan images dropped into the inbox.
	if cfg.Inbox.Path != "" {
		inbox, err := capture.NewInbox(cfg.Inbox.Path, logger)
		if err != nil {
			logger.Warn("inbox disabled", slog.String("error", err.Error()))
		} else {
			g.Go(func() error {
				return inbox.Run(gCtx, c.scanInboxImage)
			})
		}
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the inbox watcher stops with the server.
var errShutdown = errors.New("shutdown")

// handler builds the root router: health checks plus the API under /api.
func (c *components) handler() http.Handler {
	apiCfg := api.Config{
		AuthMode:  c.cfg.Auth.AccessMode(),
		AuthToken: c.cfg.Auth.Token,
		Events:    c.broker,
		Fetcher:   c.fetcher,
	}
	if c.syncer != nil {
		apiCfg.Syncer = c.syncer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.archive != nil {
			if _, err := c.archive.Count(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"archive unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(c.svc, apiCfg))
	return r
}

func (c *components) scanInboxImage(ctx context.Context, img capture.Image, path string) error {
	scan, err := c.svc.Ingest(ctx, img)
	if err != nil {
		c.logger.Warn("inbox scan failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}
	c.logger.Info("inbox scan stored",
		slog.String("path", path),
		slog.String("scan_id", scan.ID),
		slog.Int("tasks", len(scan.Tasks)))
	return nil
}
