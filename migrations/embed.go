// Package migrations embeds the ordered PostgreSQL schema files.
package migrations

import "embed"

// Files holds every NNNN_name.sql migration.
//
//go:embed *.sql
var Files embed.FS
