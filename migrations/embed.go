// Package migrations embeds the SQL files that define the sessions schema.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
