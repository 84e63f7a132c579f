package migrations

import "embed"

// SQLite embeds all SQLite-specific migration files.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres embeds the PostgreSQL migration files.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// Client embeds the client cache schema.
//
//go:embed client/*.sql
var Client embed.FS
