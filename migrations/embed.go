// Package migrations embeds the storefront schema. Files are applied in
// lexical order by database.RunMigrations.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
