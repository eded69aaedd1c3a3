package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"letterbox/internal/database/migrations"
	"letterbox/internal/database/sqlc"
	"letterbox/internal/lb"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the lb.Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    "",
	}
}

// OpenConnection opens and configures a SQLite database connection.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// Per-connection settings must go in the DSN since database/sql pools connections.
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every new connection to :memory: would be a separate, empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Capsule operations

func (s *SQLiteDatabase) CreateCapsule(ctx context.Context, capsule *lb.Capsule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	err = qtx.InsertCapsule(ctx, sqlc.InsertCapsuleParams{
		ID:        capsule.ID,
		Title:     capsule.Title,
		Message:   capsule.Message,
		OpenAt:    capsule.OpenAt.UTC(),
		Opened:    capsule.Opened,
		OpenedAt:  nullTime(capsule.OpenedAt),
		CreatedAt: capsule.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("inserting capsule: %w", err)
	}

	for i, a := range capsule.Attachments {
		err := qtx.InsertCapsuleAttachment(ctx, sqlc.InsertCapsuleAttachmentParams{
			CapsuleID:  capsule.ID,
			Position:   int64(i),
			RemoteUrl:  a.RemoteURL,
			StorageKey: a.StorageKey,
		})
		if err != nil {
			return fmt.Errorf("inserting attachment %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindCapsuleByID(ctx context.Context, id string) (*lb.Capsule, error) {
	row, err := s.queries.GetCapsuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding capsule by id: %w", err)
	}

	attachments, err := s.queries.GetAttachmentsByCapsuleID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding attachments: %w", err)
	}
	return toCapsule(row, attachments), nil
}

func (s *SQLiteDatabase) ListCapsules(ctx context.Context) ([]*lb.Capsule, error) {
	rows, err := s.queries.ListCapsules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing capsules: %w", err)
	}

	attachments, err := s.queries.ListAttachments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	byCapsule := make(map[string][]sqlc.CapsuleAttachment)
	for _, a := range attachments {
		byCapsule[a.CapsuleID] = append(byCapsule[a.CapsuleID], a)
	}

	result := make([]*lb.Capsule, len(rows))
	for i := range rows {
		result[i] = toCapsule(rows[i], byCapsule[rows[i].ID])
	}
	return result, nil
}

func (s *SQLiteDatabase) MarkCapsuleOpened(ctx context.Context, id string, openedAt time.Time) (bool, error) {
	n, err := s.queries.MarkCapsuleOpened(ctx, sqlc.MarkCapsuleOpenedParams{
		OpenedAt: sql.NullTime{Time: openedAt.UTC(), Valid: true},
		ID:       id,
	})
	if err != nil {
		return false, fmt.Errorf("marking capsule opened: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteDatabase) DeleteCapsule(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	if err := qtx.DeleteCapsuleAttachments(ctx, id); err != nil {
		return false, fmt.Errorf("deleting attachments: %w", err)
	}
	n, err := qtx.DeleteCapsuleByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting capsule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDatabase) UpdateCapsuleTitleRaw(ctx context.Context, id string, title string) error {
	err := s.queries.UpdateCapsuleTitle(ctx, sqlc.UpdateCapsuleTitleParams{Title: title, ID: id})
	if err != nil {
		return fmt.Errorf("updating capsule title: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateCapsuleMessageRaw(ctx context.Context, id string, message string) error {
	err := s.queries.UpdateCapsuleMessage(ctx, sqlc.UpdateCapsuleMessageParams{Message: message, ID: id})
	if err != nil {
		return fmt.Errorf("updating capsule message: %w", err)
	}
	return nil
}

// Device operations

func (s *SQLiteDatabase) UpsertDevice(ctx context.Context, device *lb.Device) (*lb.Device, error) {
	row, err := s.queries.UpsertDevice(ctx, sqlc.UpsertDeviceParams{
		ExternalID: device.ExternalID,
		OwnerName:  device.OwnerName,
		DeviceName: device.DeviceName,
		Platform:   device.Platform,
		LastSeen:   device.LastSeen.UTC(),
		CreatedAt:  device.CreatedAt.UTC(),
		UpdatedAt:  device.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("upserting device: %w", err)
	}
	return toDevice(row), nil
}

func (s *SQLiteDatabase) FindDeviceByExternalID(ctx context.Context, externalID string) (*lb.Device, error) {
	row, err := s.queries.GetDeviceByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding device: %w", err)
	}
	return toDevice(row), nil
}

func (s *SQLiteDatabase) ListDevices(ctx context.Context) ([]*lb.Device, error) {
	rows, err := s.queries.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return toDevices(rows), nil
}

func (s *SQLiteDatabase) ListActiveDevicesExcept(ctx context.Context, externalID string) ([]*lb.Device, error) {
	rows, err := s.queries.ListActiveDevicesExcept(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("listing active devices: %w", err)
	}
	return toDevices(rows), nil
}

func (s *SQLiteDatabase) DeactivateDevice(ctx context.Context, externalID string, at time.Time) (*lb.Device, error) {
	row, err := s.queries.DeactivateDevice(ctx, sqlc.DeactivateDeviceParams{
		UpdatedAt:  at.UTC(),
		ExternalID: externalID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("deactivating device: %w", err)
	}
	return toDevice(row), nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(ctx, sqlc.InsertOperationParams{
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string) error {
	err := s.queries.UpdateOperationFinished(ctx, sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// SchemaStatus reports the schema version relative to the embedded migrations.
func (s *SQLiteDatabase) SchemaStatus() (*migrations.Status, error) {
	return migrations.MigrationStatus(s.db)
}

// Migrate brings the schema to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func toCapsule(row sqlc.Capsule, attachments []sqlc.CapsuleAttachment) *lb.Capsule {
	c := &lb.Capsule{
		ID:          row.ID,
		Title:       row.Title,
		Message:     row.Message,
		Attachments: make([]lb.Attachment, len(attachments)),
		OpenAt:      row.OpenAt.UTC(),
		Opened:      row.Opened,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if row.OpenedAt.Valid {
		t := row.OpenedAt.Time.UTC()
		c.OpenedAt = &t
	}
	for i, a := range attachments {
		c.Attachments[i] = lb.Attachment{RemoteURL: a.RemoteUrl, StorageKey: a.StorageKey}
	}
	return c
}

func toDevice(row sqlc.Device) *lb.Device {
	return &lb.Device{
		ExternalID: row.ExternalID,
		OwnerName:  row.OwnerName,
		DeviceName: row.DeviceName,
		Platform:   row.Platform,
		Active:     row.Active,
		LastSeen:   row.LastSeen.UTC(),
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func toDevices(rows []sqlc.Device) []*lb.Device {
	result := make([]*lb.Device, len(rows))
	for i := range rows {
		result[i] = toDevice(rows[i])
	}
	return result
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Compile-time check that SQLiteDatabase implements lb.Database interface
var _ lb.Database = (*SQLiteDatabase)(nil)
