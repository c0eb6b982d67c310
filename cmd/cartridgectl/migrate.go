// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/config"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/migration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateVersionCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := migration.RunUp(cfg.DatabaseURL, newLogger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = parsed
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := migration.RunDown(cfg.DatabaseURL, steps, newLogger()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			current, dirty, err := migration.Version(cfg.DatabaseURL, newLogger())
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, map[string]any{"version": current, "dirty": dirty})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", current, dirty)
			return nil
		},
	}
}
