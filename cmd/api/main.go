// Copyright (c) 2026 Cartridge Collection. All rights reserved.

// Command api is the entry point for the cartridge catalog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when a rollup cache is configured.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/api"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/search"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/config"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/constants"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/metrics"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/middleware"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/migration"
	pgstore "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
	redisstore "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/redis"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("rollup_cache", cfg.RedisURL != ""),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	// Optional. Without it every rollup is computed on read.
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		must(log, migration.RunUp(cfg.DatabaseURL, log), "run migrations")
	}

	// ── 6. Health handlers ────────────────────────────────────────────────
	deps := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}
	if rdb != nil {
		deps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(deps, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	// The Redis cache doubles as the invalidator of every write path. The
	// interfaces stay untyped nil when it is disabled.
	var (
		cache       rollup.Cache
		catalogSink catalog.Invalidator
		boxSink     box.Invalidator
	)
	if rdb != nil {
		redisCache := rollup.NewRedisCache(rdb, cfg.RollupCacheTTL)
		cache, catalogSink, boxSink = redisCache, redisCache, redisCache
	}

	registry := metrics.New()
	transactor := pgstore.NewTransactor(pool)
	catalogRepository := catalog.NewPostgresRepository(pool)
	boxRepository := box.NewPostgresRepository(pool)

	catalogService := catalog.NewService(catalogRepository, transactor, catalogSink, log)
	boxService := box.NewService(boxRepository, catalogRepository, transactor, boxSink, log)
	sourceService := source.NewService(source.NewPostgresRepository(pool), catalogRepository, boxService, transactor, log)
	rollupService := rollup.NewService(rollup.NewPostgresReader(pool), catalogRepository, boxRepository, cache, registry, log)
	searchService := search.NewService(catalogRepository, boxService, log)

	var verifier middleware.TokenVerifier
	if cfg.JWTPubKeyPath != "" {
		tokenVerifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "initialize jwt verifier")
		verifier = tokenVerifier
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, verifier, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   registry,
		Catalog:   catalog.NewHandler(catalogService),
		Boxes:     box.NewHandler(boxService),
		Sources:   source.NewHandler(sourceService),
		Rollups:   rollup.NewHandler(rollupService),
		Search:    search.NewHandler(searchService),
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only used during startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
