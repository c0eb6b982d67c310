// Copyright (c) 2026 Cartridge Collection. All rights reserved.

// Package migration provides a thin wrapper around golang-migrate for
// running the embedded catalog schema migrations.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. The SQL files are compiled
// into the binary (package db/migrations), so the API server and cartridgectl
// apply exactly the schema they were built against.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/spaulcurtis/cartridge-collection-sub000/db/migrations"
)

// open builds a migrator over the embedded files and the given database.
func open(dsn string, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("migration: failed to load embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", sourceDriver, convertToPgx5DSN(dsn))
	if err != nil {
		_ = sourceDriver.Close()
		return nil, nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &migrateLogger{logger: logger}

	closeFn := func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}

	return migrator, closeFn, nil
}

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, logger *slog.Logger) error {
	migrator, closeFn, err := open(dsn, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}

	if isDirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	logger.Info("migration_started", slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)

	return nil
}

// RunDown rolls back the given number of migrations.
func RunDown(dsn string, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}

	migrator, closeFn, err := open(dsn, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := migrator.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: down failed: %w", err)
	}

	logger.Info("migration_rolled_back", slog.Int("steps", steps))
	return nil
}

// Version reports the applied schema version and whether it is dirty.
// A database without any applied migration reports version 0.
func Version(dsn string, logger *slog.Logger) (uint, bool, error) {
	migrator, closeFn, err := open(dsn, logger)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: failed to get current version: %w", err)
	}

	return version, dirty, nil
}

// convertToPgx5DSN ensures the DSN uses the pgx5:// scheme required by golang-migrate/v4.
func convertToPgx5DSN(dsn string) string {
	const pgx5Prefix = "pgx5://"

	if strings.HasPrefix(dsn, pgx5Prefix) {
		return dsn
	}

	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return pgx5Prefix + strings.TrimPrefix(dsn, prefix)
		}
	}

	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
