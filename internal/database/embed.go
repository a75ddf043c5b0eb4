// Package database holds the PostgreSQL schema as embedded migrations.
package database

import "embed"

// MigrationFS is read by the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
