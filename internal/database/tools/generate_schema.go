// Command tools writes sqlc/schema.sql by migrating an in-memory database
// and dumping the resulting CREATE statements.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"letterbox/internal/database"
	"letterbox/internal/database/migrations"
)

const schemaHeader = `-- Generated from internal/database/migrations/files. DO NOT EDIT.
-- Regenerate with: go generate ./internal/database

`

func main() {
	out := flag.String("out", "internal/database/sqlc/schema.sql", "output path, relative to the module root")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "generate schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s from migrations\n", *out)
}

func run(outPath string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return err
	}

	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(schemaHeader+schema), 0644)
}

// dumpSchema returns every user table and index, tables first.
// SQLite internals and the migrate bookkeeping table are left out.
func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning statement: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
