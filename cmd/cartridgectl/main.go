// Copyright (c) 2026 Cartridge Collection. All rights reserved.

// Command cartridgectl is the operator tool of the cartridge catalog: schema
// migrations, rollups, integrity reports and display-id lookups straight
// against the database.
package main

import (
	"os"
)

// version is set via ldflags during build
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
