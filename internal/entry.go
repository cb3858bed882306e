// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dynwidget/internal/api"
	"github.com/starford/dynwidget/internal/index"
	"github.com/starford/dynwidget/internal/mcpserver"
	"github.com/starford/dynwidget/internal/models"
	"github.com/starford/dynwidget/internal/present"
	"github.com/starford/dynwidget/internal/sse"
	"github.com/starford/dynwidget/internal/storage"
	"github.com/starford/dynwidget/internal/vault"
	"github.com/starford/dynwidget/internal/widget"
	"github.com/starford/dynwidget/internal/widgetservice"
)

// Output formats accepted by Show.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// runtime is the wired core shared by every command.
type runtime struct {
	store  *storage.FS
	db     *index.DB
	vault  *vault.Vault
	widget *widget.Widget
	svc    *widgetservice.Service
}

func (rt *runtime) close() {
	_ = rt.widget.Close()
	_ = rt.db.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// boot opens the vault, syncs the metadata cache and opens the widget.
func boot(cfg *Config, logger *slog.Logger) (*runtime, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	v, err := vault.Load(db, store, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load vault: %w", err)
	}

	w := widget.New(v, widget.Options{
		Buckets:         cfg.Widget.Buckets,
		NoteExtension:   cfg.Widget.NoteExtension,
		Pane:            cfg.Widget.OpenIn,
		DecorateBullets: cfg.Widget.DecorateBullets,
	}, logger)
	if err := w.Open(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open widget: %w", err)
	}

	return &runtime{
		store:  store,
		db:     db,
		vault:  v,
		widget: w,
		svc:    widgetservice.NewService(v, w),
	}, nil
}

// Run starts the HTTP server, the SSE broker and the vault watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("buckets", len(cfg.Widget.Buckets)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := boot(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	// SSE broker fed by widget renders and vault events.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	rt.widget.OnRender(func(tree *widget.Node) { broker.PublishRendered(tree) })
	unsubscribe := rt.vault.Subscribe(func(ev models.Event) { broker.PublishDocumentEvent(ev) })
	defer unsubscribe()
	broker.PublishRendered(rt.widget.Tree())

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
		if err := rt.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
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

	// Keep the vault in step with the file system.
	g.Go(func() error {
		return vault.Watch(gCtx, rt.vault, rt.db, rt.store, logger)
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close the broker first so open event streams end and Shutdown
		// does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// A non-nil return cancels gCtx, which stops the watcher.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// Show renders the widget once for the given active document and prints it.
// An empty active path renders the no-active fallback.
func Show(ctx context.Context, active, format string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	rt, err := boot(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	if active != "" {
		if _, err := rt.svc.SetActive(ctx, active); err != nil {
			return fmt.Errorf("activate %s: %w", active, err)
		}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(app.output)
		enc.SetIndent("", "  ")
		return enc.Encode(rt.svc.Snapshot(ctx))
	case FormatHTML:
		html, err := rt.svc.HTML(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(app.output, html)
		return err
	default:
		_, err := io.WriteString(app.output, present.Text(rt.widget.Tree(), present.DefaultTheme()))
		return err
	}
}

// ServeMCP exposes the widget as MCP tools on stdin/stdout while the vault
// watcher keeps it current.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Stdout carries the protocol.
	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	rt, err := boot(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)

	g.Go(func() error {
		return vault.Watch(watchCtx, rt.vault, rt.db, rt.store, logger)
	})
	g.Go(func() error {
		defer stopWatch()
		return mcpserver.New(rt.svc, app.version).ServeStdio()
	})

	return g.Wait()
}
