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

	"github.com/starford/cvdraft/internal/api"
	"github.com/starford/cvdraft/internal/backend"
	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/inbox"
	"github.com/starford/cvdraft/internal/sse"
	"github.com/starford/cvdraft/internal/storage"
)

// components are the pieces every command builds from the config.
type components struct {
	logger  *slog.Logger
	client  *backend.Client
	exports *storage.FS
	history *history.DB // nil when disabled
	session *editor.Session
}

func (c *components) Close() {
	if c.history != nil {
		_ = c.history.Close()
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) build() (*components, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend_url", cfg.Backend.BaseURL),
		slog.String("export_path", cfg.Export.Path),
		slog.String("history_path", cfg.History.Path),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c := &components{logger: logger}

	c.client = backend.NewClient(nil,
		backend.WithBaseURL(cfg.Backend.BaseURL),
		backend.WithTimeout(cfg.Backend.Timeout),
	)

	exports, err := storage.NewFS(cfg.Export.Path)
	if err != nil {
		return nil, fmt.Errorf("init export dir: %w", err)
	}
	c.exports = exports
	logger.Debug("Export directory ready", slog.String("root", exports.Root()))

	sessionOpts := []editor.Option{editor.WithLogger(logger)}
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("init history: %w", err)
		}
		c.history = db
		sessionOpts = append(sessionOpts, editor.WithSaveLog(db))
	}

	c.session = editor.NewSession(c.client, sessionOpts...)
	return c, nil
}

// Run starts the HTTP editor with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.build()
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	// SSE broker fed by session events.
	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()
	c.session.OnChange(broker.Relay)

	deps := api.Deps{
		Session:     c.session,
		Exports:     c.exports,
		Events:      broker,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
	}
	if c.history != nil {
		deps.History = c.history
	}
	apiRouter := api.NewRouter(deps)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(api.CORSMiddleware(cfg.CORS.AllowedOrigins))
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the inbox folder for dropped resumes.
	if cfg.Inbox.Enabled() {
		g.Go(func() error {
			if err := inbox.Watch(gCtx, cfg.Inbox.Path, c.session, logger, nil); err != nil {
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
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
