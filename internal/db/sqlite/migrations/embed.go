// Package migrations embeds the numbered SQL migrations of the SQLite store.
package migrations

import "embed"

// FS holds NNN_name.up.sql files applied in version order.
//
//go:embed *.up.sql
var FS embed.FS
