package storage

import (
	"context"
	"fmt"

	"letterbox/internal/config"
	"letterbox/internal/lb"
)

// NewStoreFromConfig creates an AttachmentStore implementation based on the storage config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (lb.AttachmentStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.PublicBaseURL), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		store, err := NewFileSystemStore(cfg.FSRoot, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
