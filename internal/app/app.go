package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"letterbox/internal/config"
	"letterbox/internal/database"
	"letterbox/internal/database/migrations"
	"letterbox/internal/database/sqlc"
	"letterbox/internal/encryption"
	"letterbox/internal/lb"
	"letterbox/internal/notify"
	"letterbox/internal/storage"
)

// LBApp is the application layer between the CLI and LBService.
// It constructs all dependencies from config, records an operation row
// for commands that change state, and manages the DB lifecycle on Close.
type LBApp struct {
	cfg      *config.Config
	db       *database.SQLiteDatabase
	store    lb.AttachmentStore
	notifier lb.Notifier
	cipher   *encryption.AESGCMCipher
	service  *lb.LBService
	logger   lb.Logger
	op       *Operation
	logFile  *os.File
}

// NewLBApp creates a fully wired LBApp from the given config.
// operation identifies the CLI command being run (e.g. "CreateLetter", "Serve").
// passphrase unlocks an age-protected key file and may be nil when none is configured.
// The caller must call Close when done.
func NewLBApp(ctx context.Context, cfg *config.Config, operation string, passphrase encryption.PassphraseFunc) (*LBApp, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	fail := func(err error) (*LBApp, error) {
		logFile.Close()
		return nil, err
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fail(fmt.Errorf("creating database: %w", err))
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return fail(fmt.Errorf("database schema out of date (run `letterbox db migrate`): %w", err))
	}

	cipher, err := encryption.NewCipherFromConfig(cfg.Encryption, passphrase, logger)
	if err != nil {
		db.Close()
		return fail(fmt.Errorf("creating cipher: %w", err))
	}

	store, err := storage.NewStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		db.Close()
		return fail(fmt.Errorf("creating attachment store: %w", err))
	}

	notifier, err := notify.NewNotifierFromConfig(cfg.Notifications, logger)
	if err != nil {
		db.Close()
		return fail(fmt.Errorf("creating notifier: %w", err))
	}

	svc := lb.NewLBService(db, cipher, store, notifier, logger, lb.RealClock{}, lb.UUIDGenerator{})

	return &LBApp{
		cfg:      cfg,
		db:       db,
		store:    store,
		notifier: notifier,
		cipher:   cipher,
		service:  svc,
		logger:   logger,
		op:       NewOperation(operation, ""),
		logFile:  logFile,
	}, nil
}

// MigrateDatabase brings the configured database to the latest schema and
// returns the resulting status. It needs no key material, so it does not
// build a full LBApp.
func MigrateDatabase(cfg *config.Config) (*migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db.SchemaStatus()
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for state-changing commands.
func (a *LBApp) persistOperation(ctx context.Context, parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// track marks the operation failed when err is non-nil and passes err through.
func (a *LBApp) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// Service exposes the underlying service, mainly for the HTTP server.
func (a *LBApp) Service() *lb.LBService {
	return a.service
}

// ListLetters returns every letter, soonest-unlockable first.
func (a *LBApp) ListLetters(ctx context.Context) ([]*lb.Capsule, error) {
	return a.service.ListCapsules(ctx)
}

// GetLetter returns a single letter without opening it.
func (a *LBApp) GetLetter(ctx context.Context, id string) (*lb.Capsule, error) {
	return a.service.GetCapsule(ctx, id)
}

// CreateLetter stores a letter with photos read from the given local paths.
func (a *LBApp) CreateLetter(ctx context.Context, title, message string, openAt time.Time, photoPaths []string, senderDeviceID string) (*lb.Capsule, error) {
	if err := a.persistOperation(ctx, title); err != nil {
		return nil, err
	}

	uploads := make([]lb.AttachmentUpload, 0, len(photoPaths))
	for _, p := range photoPaths {
		f, err := os.Open(p)
		if err != nil {
			return nil, a.track(fmt.Errorf("opening photo: %w", err))
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, a.track(fmt.Errorf("stat photo: %w", err))
		}
		uploads = append(uploads, lb.AttachmentUpload{Filename: info.Name(), Size: info.Size(), Body: f})
	}

	letter, err := a.service.CreateCapsule(ctx, lb.CreateCapsuleParams{
		Title:          title,
		Message:        message,
		OpenAt:         openAt,
		Attachments:    uploads,
		SenderDeviceID: senderDeviceID,
	})
	return letter, a.track(err)
}

// OpenLetter performs the one-way open transition if the letter is due.
func (a *LBApp) OpenLetter(ctx context.Context, id string) (*lb.Capsule, error) {
	if err := a.persistOperation(ctx, id); err != nil {
		return nil, err
	}
	letter, err := a.service.OpenCapsule(ctx, id)
	return letter, a.track(err)
}

// DeleteLetter removes a letter and its photos.
func (a *LBApp) DeleteLetter(ctx context.Context, id string) error {
	if err := a.persistOperation(ctx, id); err != nil {
		return err
	}
	return a.track(a.service.DeleteCapsule(ctx, id))
}

// RegisterDevice creates or refreshes a push notification recipient.
func (a *LBApp) RegisterDevice(ctx context.Context, params lb.RegisterDeviceParams) (*lb.Device, error) {
	if err := a.persistOperation(ctx, params.ExternalID); err != nil {
		return nil, err
	}
	device, err := a.service.RegisterDevice(ctx, params)
	return device, a.track(err)
}

// ListDevices returns every registered device.
func (a *LBApp) ListDevices(ctx context.Context) ([]*lb.Device, error) {
	return a.service.ListDevices(ctx)
}

// DeactivateDevice stops notifications to a device.
func (a *LBApp) DeactivateDevice(ctx context.Context, externalID string) (*lb.Device, error) {
	if err := a.persistOperation(ctx, externalID); err != nil {
		return nil, err
	}
	device, err := a.service.DeactivateDevice(ctx, externalID)
	return device, a.track(err)
}

// Remediate runs the remediation pass. Dry runs are not recorded as operations.
func (a *LBApp) Remediate(ctx context.Context, opts lb.RemediateOptions) (*lb.RemediationReport, error) {
	if !opts.DryRun {
		if err := a.persistOperation(ctx, ""); err != nil {
			return nil, err
		}
	}
	report, err := a.service.Remediate(ctx, opts)
	if err == nil && report.Failed > 0 {
		a.op.Fail()
	}
	return report, a.track(err)
}

// GetHistory returns the most recent recorded operations.
func (a *LBApp) GetHistory(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	return a.db.ListOperations(ctx, limit)
}

// Close finalizes the operation and closes all resources. Pending
// notification dispatches are awaited before the database goes away.
func (a *LBApp) Close() error {
	var firstErr error

	a.service.Wait()

	if a.op.Persisted() {
		if err := a.db.FinishOperation(context.Background(), a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
