// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jera/internal/api"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/mcpserver"
	"github.com/starford/jera/internal/sse"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/todostore"
)

// backends holds what both the HTTP server and the MCP command need.
type backends struct {
	db      *index.DB
	content storage.Provider
	fs      *storage.FS // nil unless the fs driver is active
	closers []io.Closer
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

func openBackends(ctx context.Context, cfg *Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.Content.Driver {
	case ContentDriverRedis:
		r, err := storage.NewRedis(ctx, cfg.Content.RedisURL, cfg.Content.Prefix)
		if err != nil {
			return nil, fmt.Errorf("init content: %w", err)
		}
		b.content = r
		b.closers = append(b.closers, r)
	default:
		if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create content dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Content.Path)
		if err != nil {
			return nil, fmt.Errorf("init content: %w", err)
		}
		b.content = fs
		b.fs = fs
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.Close()
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	lock, err := index.AcquireLock(cfg.SQLite.Path)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, lock)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}
	b.db = db
	b.closers = append(b.closers, db)

	if err := index.Sync(ctx, db, b.content, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return b, nil
}

func newLogger(app *application) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func newStore(ctx context.Context, cfg *Config, b *backends, logger *slog.Logger, notify todostore.Notifier) (*todostore.Store, error) {
	opts := []todostore.Option{
		todostore.WithLogger(logger),
		todostore.WithOwner(cfg.User.UID),
		todostore.WithCatalog(cfg.Tags),
	}
	if notify != nil {
		opts = append(opts, todostore.WithNotifier(notify))
	}
	store, err := todostore.New(ctx, b.db, b.content, opts...)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return store, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := newLogger(app)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_driver", cfg.Content.Driver),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	broker := sse.NewBroker(2*time.Second, sse.WithHeartbeat(30*time.Second))
	defer broker.Close()

	store, err := newStore(ctx, cfg, b, logger, broker.PublishChange)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORSMiddleware(cfg.App.HTTP.CORSOrigins))

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

	// MCP shares the store with the HTTP API; see RunMCP for the stdio variant.
	mcpHandler := mcpserver.New(store, app.version).HTTPHandler()
	r.Mount("/api", api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, mcpHandler))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Only the fs driver has files that can change behind our back.
	if b.fs != nil {
		g.Go(func() error {
			err := index.Watch(gCtx, b.db, b.fs, logger, func(kind, id string) {
				broker.PublishChange("todo."+kind, id)
			})
			if err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the todo store over MCP on stdin/stdout until the client
// disconnects. It owns the database exclusively, so it cannot run next to
// Run on the same data; clients of a running server use /api/mcp instead.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := newLogger(app)

	b, err := openBackends(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	store, err := newStore(ctx, app.config, b, logger, nil)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("version", app.version))
	if err := mcpserver.New(store, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
