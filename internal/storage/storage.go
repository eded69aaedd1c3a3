// Package storage holds the photo attachment backends.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidKey is returned for object keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// validateKey rejects keys that could address something outside the store.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// joinURL appends an object key to a base URL, escaping each key segment.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	escaped := path.Join(segments...)
	if strings.HasSuffix(base, "://") {
		return base + escaped
	}
	return strings.TrimRight(base, "/") + "/" + escaped
}

// checkSize compares the bytes read against the declared size. A negative
// declared size means unknown.
func checkSize(expected, got int64) error {
	if expected >= 0 && got != expected {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expected, got)
	}
	return nil
}
