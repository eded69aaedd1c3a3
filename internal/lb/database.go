package lb

import (
	"context"
	"time"

	"letterbox/internal/database/sqlc"
)

// Database provides an interface for persistent storage of capsules and devices.
// Capsules passed in and out of Database are in their stored form: the
// message field is whatever is on disk. Use CapsuleRepository to get the
// decoded form.
type Database interface {
	// Capsule operations

	// CreateCapsule inserts a capsule and its attachments atomically.
	CreateCapsule(ctx context.Context, capsule *Capsule) error

	// FindCapsuleByID returns the capsule with the given ID, or nil if it does not exist.
	FindCapsuleByID(ctx context.Context, id string) (*Capsule, error)

	// ListCapsules returns all capsules ordered by OpenAt ascending.
	ListCapsules(ctx context.Context) ([]*Capsule, error)

	// MarkCapsuleOpened sets opened/opened_at only if the capsule is not opened yet.
	// Returns true if this call performed the transition.
	MarkCapsuleOpened(ctx context.Context, id string, openedAt time.Time) (bool, error)

	// DeleteCapsule removes a capsule and its attachment rows.
	// Returns false if no capsule had the given ID.
	DeleteCapsule(ctx context.Context, id string) (bool, error)

	// UpdateCapsuleTitleRaw overwrites the stored title without any encoding.
	UpdateCapsuleTitleRaw(ctx context.Context, id string, title string) error

	// UpdateCapsuleMessageRaw overwrites the stored message without any encoding.
	UpdateCapsuleMessageRaw(ctx context.Context, id string, message string) error

	// Device operations

	// UpsertDevice creates or refreshes a device keyed on ExternalID.
	UpsertDevice(ctx context.Context, device *Device) (*Device, error)

	// FindDeviceByExternalID returns the device, or nil if it does not exist.
	FindDeviceByExternalID(ctx context.Context, externalID string) (*Device, error)

	// ListDevices returns all devices, most recently seen first.
	ListDevices(ctx context.Context) ([]*Device, error)

	// ListActiveDevicesExcept returns active devices other than externalID.
	ListActiveDevicesExcept(ctx context.Context, externalID string) ([]*Device, error)

	// DeactivateDevice marks a device inactive. Returns nil if it does not exist.
	DeactivateDevice(ctx context.Context, externalID string, at time.Time) (*Device, error)

	// Operation tracking

	CreateOperation(ctx context.Context, operation string, parameters string) (*sqlc.Operation, error)
	FinishOperation(ctx context.Context, id int64, status string) error
	ListOperations(ctx context.Context, limit int) ([]*sqlc.Operation, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo writes a consistent snapshot of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
