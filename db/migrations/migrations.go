// Package migrations embeds the schema migrations of every supported
// database so the binary can migrate without a checkout of the repo.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS
