package app

import (
	"context"
	"fmt"
	"os"
	"time"
)

// backupContentType is the media type of an uploaded database snapshot.
const backupContentType = "application/vnd.sqlite3"

// BackupDatabase snapshots the database with VACUUM INTO and uploads the
// snapshot to the attachment store under backups/. Returns the object URL.
func (a *LBApp) BackupDatabase(ctx context.Context) (string, error) {
	if err := a.persistOperation(ctx, ""); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "letterbox-db-backup-*.db")
	if err != nil {
		return "", a.track(fmt.Errorf("creating temp file for db backup: %w", err))
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := a.db.BackupTo(tmpPath); err != nil {
		return "", a.track(err)
	}

	url, err := a.uploadSnapshot(ctx, tmpPath)
	if err != nil {
		return "", a.track(err)
	}
	a.logger.Info("database backed up", "url", url)
	return url, nil
}

// uploadSnapshot opens the snapshot file and stores it with a timestamped key.
func (a *LBApp) uploadSnapshot(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening db backup for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat db backup: %w", err)
	}

	key := fmt.Sprintf("backups/letterbox-%s.db", time.Now().UTC().Format("20060102T150405Z"))
	url, err := a.store.Put(ctx, key, f, info.Size(), backupContentType)
	if err != nil {
		return "", fmt.Errorf("uploading db backup: %w", err)
	}
	return url, nil
}
