package migrations

import "embed"

// FS contains embedded SQLite migrations for study results.
//
//go:embed *.sql
var FS embed.FS
