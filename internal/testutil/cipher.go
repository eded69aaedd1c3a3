package testutil

import (
	"bytes"
	"testing"

	"letterbox/internal/encryption"
	"letterbox/internal/lb"
)

// TestKey returns a deterministic 32-byte key filled with b.
func TestKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, encryption.KeySize)
}

// NewTestCipher creates an AES-GCM cipher over TestKey(0x42).
func NewTestCipher(t *testing.T, logger lb.Logger) *encryption.AESGCMCipher {
	t.Helper()
	return NewTestCipherWithKey(t, 0x42, logger)
}

// NewTestCipherWithKey creates an AES-GCM cipher over TestKey(b), for tests
// that need data written under a different key.
func NewTestCipherWithKey(t *testing.T, b byte, logger lb.Logger) *encryption.AESGCMCipher {
	t.Helper()

	if logger == nil {
		logger = lb.NewNopLogger()
	}
	c, err := encryption.NewAESGCMCipher(TestKey(b), logger)
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}
	return c
}
