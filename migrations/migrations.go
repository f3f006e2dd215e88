// Package migrations embeds the SQL schema of the jobs table.
package migrations

import "embed"

// FS holds the migration scripts, applied in file name order
//
//go:embed *.sql
var FS embed.FS
