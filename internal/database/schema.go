package database

import _ "embed"

// Schema is the current schema, generated from the migration files.
// Tests apply it directly to skip the migration machinery.
//
//go:embed sqlc/schema.sql
var Schema string
