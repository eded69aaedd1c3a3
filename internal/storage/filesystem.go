package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"letterbox/internal/lb"
)

// FileSystemStore keeps attachments as files under a root directory,
// one file per object key:
//
//	<root>/
//	  letters/
//	    <capsuleID>/
//	      <n>-<uuid>.<ext>
type FileSystemStore struct {
	root    string
	baseURL string
}

// NewFileSystemStore creates a store rooted at the given path. URLs are built
// from baseURL, or are file:// URLs of the stored file if it is empty.
func NewFileSystemStore(root, baseURL string) (*FileSystemStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}

	return &FileSystemStore{root: abs, baseURL: baseURL}, nil
}

// Root returns the absolute directory the store writes to.
func (f *FileSystemStore) Root() string {
	return f.root
}

// Put writes the object atomically and returns its URL.
func (f *FileSystemStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	destPath := filepath.Join(f.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := writeFile(destPath, r, size); err != nil {
		return "", err
	}

	if f.baseURL != "" {
		return joinURL(f.baseURL, key), nil
	}
	return "file://" + filepath.ToSlash(destPath), nil
}

// Delete removes the object file. Missing files are ignored.
func (f *FileSystemStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(f.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// ValidateSetup verifies that the root exists and is a writable directory.
func (f *FileSystemStore) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", f.root)
	}

	probe, err := os.CreateTemp(f.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("store root not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := checkSize(expectedSize, written); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements lb.AttachmentStore interface
var _ lb.AttachmentStore = (*FileSystemStore)(nil)
