// Copyright (c) 2026 Cartridge Collection. All rights reserved.

// Package migrations contains embedded SQL migration files for the catalog schema.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed *.sql
var Files embed.FS
