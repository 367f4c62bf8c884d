// Package migrations embeds the SQL schema.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
