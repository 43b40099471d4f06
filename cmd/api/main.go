// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Bookshelf HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and an optional .env).
//  3. Open the collection slot store selected by STORE_DRIVER.
//  4. Hydrate the inventory from the slot.
//  5. Start the one-shot remote catalog fetch.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/taibuivan/bookshelf/internal/api"
	"github.com/taibuivan/bookshelf/internal/auth"
	"github.com/taibuivan/bookshelf/internal/catalog"
	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/config"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/middleware"
	"github.com/taibuivan/bookshelf/internal/platform/migration"
	pgstore "github.com/taibuivan/bookshelf/internal/platform/postgres"
	redisstore "github.com/taibuivan/bookshelf/internal/platform/redis"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
	"github.com/taibuivan/bookshelf/internal/platform/sqlite"
	"github.com/taibuivan/bookshelf/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(false, slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log = newLogger(cfg.IsDevelopment(), level)
	slog.SetDefault(log)
	log.Debug("debug_logging_enabled")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
		slog.Bool("auth_enabled", cfg.AuthEnabled()),
	)

	// Root context lives until a shutdown signal. The catalog fetch ends with it.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Startup I/O gets a deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Slot Store ─────────────────────────────────────────────────────
	repository, closeStore, err := openRepository(startupCtx, cfg, log)
	must(log, err, "open slot store")
	defer closeStore()

	// ── 4. Inventory ──────────────────────────────────────────────────────
	books, err := inventory.NewService(startupCtx, repository, log,
		inventory.WithPlaceholder(cfg.PlaceholderImage),
	)
	must(log, err, "hydrate inventory")

	// ── 5. Remote Catalog ─────────────────────────────────────────────────
	if cfg.CatalogEnabled {
		fetcher := catalog.NewFetcher(catalog.NewClient(cfg.CatalogURL, cfg.CatalogUserAgent), books, log)
		fetcher.Start(rootCtx)
	}

	// ── 6. Owner Authentication ───────────────────────────────────────────
	var verifier middleware.TokenVerifier
	var tokens auth.TokenIssuer
	if cfg.AuthEnabled() {
		tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
		must(log, err, "initialize token service")
		verifier, tokens = tokenService, tokenService
	}
	authService := auth.NewService(cfg.OwnerPasswordHash, tokens, cfg.SessionTTL, log)

	// ── 7. Handlers ───────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers([]api.DependencyCheck{
		{Name: cfg.StoreDriver, Check: books.Ping},
	}, log)

	pages, err := web.NewPages(books, web.PagesConfig{
		Auth:         authService,
		RequireOwner: middleware.RequireOwnerPage(cfg.AuthEnabled(), "/login"),
		SecureCookie: cfg.IsProduction(),
	}, log)
	must(log, err, "parse page templates")

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.IsProduction()),
		Books:     web.NewAPIHandler(books, middleware.RequireOwner(cfg.AuthEnabled()), log),
		Pages:     pages,
	}

	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger returns a colored console logger for development and a JSON
// logger otherwise.
func newLogger(development bool, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if development {
		handler = tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// openRepository connects the slot store chosen by cfg.StoreDriver. The
// returned func releases its connections.
func openRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (inventory.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return inventory.NewSQLiteRepository(db, cfg.StoreSlot, log), closer(log, "sqlite", db), nil

	case config.DriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		return inventory.NewRedisRepository(client, cfg.StoreSlot, log), closer(log, "redis", client), nil

	case config.DriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return inventory.NewPostgresRepository(pool, cfg.StoreSlot, log), func() {
			log.Info("closing_store", slog.String("driver", "postgres"))
			pool.Close()
		}, nil

	default:
		return inventory.NewMemoryRepository(log), func() {}, nil
	}
}

func closer(log *slog.Logger, driver string, resource io.Closer) func() {
	return func() {
		log.Info("closing_store", slog.String("driver", driver))
		if err := resource.Close(); err != nil {
			log.Error("store_close_failed", slog.String("driver", driver), slog.Any("error", err))
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
