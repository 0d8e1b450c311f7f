package db

import "embed"

// MigrationFS holds the engine schema migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
