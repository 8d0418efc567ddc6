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

	"github.com/arlberg/slack2md/internal/api"
	"github.com/arlberg/slack2md/internal/convert"
	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/mcpserver"
	"github.com/arlberg/slack2md/internal/storage"
)

// Run performs one conversion of the export tree into the Markdown archive.
// With the serve option the process then stays alive: the archive is served
// over HTTP and the export tree is watched for changes, each settled change
// triggering a full re-conversion.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("source_path", cfg.Source.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("group_by_day", cfg.Convert.GroupByDay),
		slog.Bool("ignore_channel_login", cfg.Convert.IgnoreChannelLogin),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// The source tree must exist; the output directory is created if absent.
	src, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return fmt.Errorf("init source: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Path, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	dst, err := storage.NewFS(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	var idx *index.DB
	if cfg.SQLite.Enabled() {
		idx, err = index.Open(cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		defer idx.Close()
	}

	convertOpts := convert.Options{
		GroupByDay:         cfg.Convert.GroupByDay,
		IgnoreChannelLogin: cfg.Convert.IgnoreChannelLogin,
	}

	// runConversion re-reads channels.json/users.json each time so watch
	// re-runs pick up directory changes too.
	runConversion := func() error {
		ws, err := convert.LoadWorkspace(src)
		if err != nil {
			return err
		}
		return convert.New(src, dst, ws, idx, convertOpts, logger).Run()
	}

	if err := runConversion(); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	logger.Info("Conversion complete", slog.String("output", cfg.Output.Path))

	if !app.serve {
		return nil
	}

	if idx == nil {
		return fmt.Errorf("serve requires sqlite.path to be set")
	}

	// Build chi router over the archive.
	apiRouter := api.NewRouter(idx, dst, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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

	// Watch the export tree and re-convert on change.
	g.Go(func() error {
		return convert.Watch(gCtx, cfg.Source.Path, logger, runConversion)
	})

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the archive over MCP stdio. The archive index must be
// configured; a prior conversion run is expected to have populated it.
func RunMCP(cfg *Config) error {
	if !cfg.SQLite.Enabled() {
		return fmt.Errorf("mcp requires sqlite.path to be set")
	}
	idx, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer idx.Close()

	dst, err := storage.NewFS(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	return mcpserver.New(idx, dst).ServeStdio()
}
