package testutil

import (
	"path/filepath"
	"testing"

	"letterbox/internal/database"
)

// NewTestDatabase returns an in-memory database built from the generated schema
// snapshot. It is closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB)
	t.Cleanup(func() { db.Close() })
	return db
}

// NewFileTestDatabase returns a WAL-mode database file in a temp directory,
// migrated the same way production databases are. Unlike the in-memory
// database it allows several connections, so writers really race.
func NewFileTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "letterbox.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
