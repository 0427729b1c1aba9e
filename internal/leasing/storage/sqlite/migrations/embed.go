package migrations

import "embed"

// FS contains embedded SQLite migrations for leasing storage.
//
//go:embed *.sql
var FS embed.FS
