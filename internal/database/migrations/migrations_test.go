package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"capsules", "capsule_attachments", "devices", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if !errors.Is(err, ErrNeedsMigration) {
		t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNeedsMigration", err)
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// An attachment for a capsule that does not exist must be rejected
	_, err := db.Exec(`
		INSERT INTO capsule_attachments (capsule_id, position, remote_url, storage_key)
		VALUES ('missing-capsule', 0, 'http://example/p.jpg', 'letters/missing/0.jpg')
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_AttachmentsCascade(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO capsules (id, title, message, open_at, created_at)
		VALUES ('c-1', 'Hello', 'body', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("Failed to insert capsule: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO capsule_attachments (capsule_id, position, remote_url, storage_key)
		VALUES ('c-1', 0, 'http://example/p.jpg', 'letters/c-1/0.jpg')
	`)
	if err != nil {
		t.Fatalf("Failed to insert attachment: %v", err)
	}

	if _, err := db.Exec("DELETE FROM capsules WHERE id = 'c-1'"); err != nil {
		t.Fatalf("Failed to delete capsule: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM capsule_attachments").Scan(&count); err != nil {
		t.Fatalf("Failed to count attachments: %v", err)
	}
	if count != 0 {
		t.Errorf("attachments after capsule delete = %d, want 0", count)
	}
}

func TestSchema_CapsuleDefaults(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO capsules (id, title, message, open_at, created_at)
		VALUES ('c-1', 'Hello', 'body', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("Failed to insert capsule: %v", err)
	}

	var opened bool
	var openedAt sql.NullTime
	if err := db.QueryRow("SELECT opened, opened_at FROM capsules WHERE id = 'c-1'").Scan(&opened, &openedAt); err != nil {
		t.Fatalf("Failed to read capsule: %v", err)
	}
	if opened {
		t.Error("new capsule opened = true, want false")
	}
	if openedAt.Valid {
		t.Error("new capsule opened_at is set, want NULL")
	}
}

func TestSchema_DevicePrimaryKey(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insert := `
		INSERT INTO devices (external_id, owner_name, device_name, platform, last_seen, created_at, updated_at)
		VALUES ('player-1', 'Alex', 'Pixel', 'android', datetime('now'), datetime('now'), datetime('now'))
	`
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("Failed to insert first device: %v", err)
	}

	// A second row for the same external id should fail due to the PRIMARY KEY
	if _, err := db.Exec(insert); err == nil {
		t.Error("Expected primary key violation for duplicate external_id, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}

func TestMigrationStatus(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	before, err := MigrationStatus(db)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if before.Current != 0 || before.Latest != 1 || before.UpToDate() {
		t.Errorf("status before migrating = %+v, want current 0 latest 1", before)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	after, err := MigrationStatus(db)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if !after.UpToDate() || after.Current != 1 {
		t.Errorf("status after migrating = %+v, want up to date at 1", after)
	}
}
