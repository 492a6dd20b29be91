// Package migrations embeds the PostgreSQL schema migrations so the binary
// can apply them without the files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
