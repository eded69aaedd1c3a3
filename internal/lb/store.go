package lb

import (
	"context"
	"io"
)

// AttachmentStore provides an interface for letter photo storage backends.
type AttachmentStore interface {
	// Put stores size bytes read from r under key and returns the URL
	// clients should use to fetch it.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ValidateSetup verifies that the store is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}
