// Package migrations embeds SQL migration files for the SQLite vector store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// Files are named NNN_description.up.sql and applied in order.
//
//go:embed *.sql
var FS embed.FS
