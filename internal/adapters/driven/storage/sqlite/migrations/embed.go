// Package migrations holds the versioned SQL schema of the history database.
// Files are named NNN_description.up.sql and applied in order.
package migrations

import "embed"

// FS contains the migration files.
//
//go:embed *.sql
var FS embed.FS
