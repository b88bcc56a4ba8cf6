package db

import "embed"

// MigrationFS embeds the schema migrations (tenancy, accounting, documents, inventory, CRM).
// Applied by migrate.Run from cmd/migrate and, optionally, cmd/seed.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
