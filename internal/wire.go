package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/scanboard/internal/analyzer"
	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/archive"
	"github.com/starford/scanboard/internal/auth"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/gcal"
	"github.com/starford/scanboard/internal/sse"
	"github.com/starford/scanboard/internal/storage"
)

// components is everything a front end needs, built once from Config.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	svc     *app.Service
	broker  *sse.Broker
	data    *storage.FS
	archive *archive.DB
	fetcher *capture.Fetcher
	syncer  *gcal.Syncer
}

func (c *components) Close() {
	c.broker.Close()
	if c.archive != nil {
		if err := c.archive.Close(); err != nil {
			c.logger.Warn("archive close failed", slog.String("error", err.Error()))
		}
	}
}

func setup(opts []Option) (*application, error) {
	a := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return a, nil
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// build wires storage, archive, analyzer, broker and the application
// service. The caller owns Close.
func build(ctx context.Context, cfg *Config, logger *slog.Logger) (*components, error) {
	c := &components{
		cfg:     cfg,
		logger:  logger,
		broker:  sse.NewBroker(cfg.SSE.Throttle),
		fetcher: capture.NewFetcher(),
	}

	appOpts := []app.Option{
		app.WithLogger(logger),
		app.WithNotifier(c.broker),
		app.WithAuthenticator(auth.New(auth.WithDelay(cfg.Auth.LoginDelay))),
	}

	if cfg.Data.Dir != "" {
		fs, err := storage.NewFS(cfg.Data.Dir)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.data = fs
		appOpts = append(appOpts, app.WithBlobs(capture.NewBlobs(fs)))
	}

	if cfg.SQLite.Enabled() {
		db, err := archive.Open(cfg.SQLite.Path)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init archive: %w", err)
		}
		c.archive = db
		appOpts = append(appOpts, app.WithMirror(db))
	}

	svc, err := app.New(newAnalyzer(cfg.Analyzer), appOpts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init service: %w", err)
	}
	c.svc = svc

	if cfg.GCal.Enabled {
		syncer, err := newSyncer(ctx, cfg.GCal, logger)
		switch {
		case errors.Is(err, apperr.ErrUnauthorized):
			logger.Warn("calendar sync disabled: run gcal-auth first",
				slog.String("token_file", cfg.GCal.TokenFile))
		case err != nil:
			c.Close()
			return nil, fmt.Errorf("init calendar sync: %w", err)
		default:
			c.syncer = syncer
		}
	}

	return c, nil
}

func newAnalyzer(cfg AnalyzerConfig) analyzer.Analyzer {
	if cfg.Provider == ProviderFake {
		return analyzer.Fake{Response: cfg.FakeResponse}
	}
	return analyzer.NewGemini(analyzer.GeminiConfig{
		Endpoint:    cfg.Endpoint,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
}

func newSyncer(ctx context.Context, cfg GCalConfig, logger *slog.Logger) (*gcal.Syncer, error) {
	oc, err := gcal.LoadConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := gcal.TokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	srv, err := gcal.NewService(ctx, oc, tok)
	if err != nil {
		return nil, err
	}
	return gcal.NewSyncer(srv, cfg.Calendar, time.Local, logger), nil
}
