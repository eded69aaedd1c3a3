package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"letterbox/internal/lb"
)

// MemoryStore is an in-memory implementation of the lb.AttachmentStore interface.
// It is useful for testing and for running the server without any storage setup.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	baseURL string
	objects map[string]memoryObject
	mu      sync.RWMutex

	// failPuts makes Put fail, to exercise upload error paths in tests.
	failPuts error
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates a new in-memory store. URLs are built from baseURL,
// or use the memory:// scheme if it is empty.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

// Put stores the object under key.
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	m.mu.RLock()
	failure := m.failPuts
	m.mu.RUnlock()
	if failure != nil {
		return "", failure
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read object: %w", err)
	}
	if err := checkSize(size, int64(len(data))); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return joinURL(m.baseURL, key), nil
}

// Delete removes the object. Missing keys are ignored.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

// Get returns a copy of the stored object and its content type.
func (m *MemoryStore) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FailPuts makes every following Put return err. Pass nil to recover.
func (m *MemoryStore) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = err
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(ctx context.Context) error {
	return nil
}

// Compile-time check that MemoryStore implements lb.AttachmentStore interface
var _ lb.AttachmentStore = (*MemoryStore)(nil)
