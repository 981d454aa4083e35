// Package migrations embeds the SQLite schema for the document table.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
