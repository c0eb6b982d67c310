// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/search"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/config"
	pgstore "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
)

var (
	format  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:          "cartridgectl",
	Short:        "cartridgectl - operator tool for the cartridge catalog",
	Long:         "cartridgectl runs migrations and read-only reports against the catalog database named by DATABASE_URL.",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&format, "format", formatTable, "Output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newRollupCmd())
	rootCmd.AddCommand(newIntegrityCmd())
	rootCmd.AddCommand(newLookupCmd())
}

// newLogger writes text logs to stderr so stdout stays machine readable.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// services is the read side of the catalog wired against PostgreSQL.
// Nothing here writes, so no cache or invalidator is attached.
type services struct {
	pool    *pgxpool.Pool
	boxes   *box.Service
	rollups *rollup.Service
	search  *search.Service
}

func openServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	transactor := pgstore.NewTransactor(pool)
	catalogRepository := catalog.NewPostgresRepository(pool)
	boxRepository := box.NewPostgresRepository(pool)
	boxService := box.NewService(boxRepository, catalogRepository, transactor, nil, logger)

	return &services{
		pool:    pool,
		boxes:   boxService,
		rollups: rollup.NewService(rollup.NewPostgresReader(pool), catalogRepository, boxRepository, nil, nil, logger),
		search:  search.NewService(catalogRepository, boxService, logger),
	}, nil
}

func (s *services) Close() {
	s.pool.Close()
}
