package encryption

import (
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"letterbox/internal/config"
)

func TestNewCipherFromConfig(t *testing.T) {
	t.Run("hex key", func(t *testing.T) {
		cfg := config.EncryptionConfig{KeyHex: hex.EncodeToString(testKey(0x21))}
		c, err := NewCipherFromConfig(cfg, nil, &recordingLogger{})
		if err != nil {
			t.Fatalf("NewCipherFromConfig() error = %v", err)
		}

		reference, _ := newTestCipher(t, 0x21)
		envelope, _ := reference.Encrypt("shared")
		if got := c.Decrypt(envelope); got != "shared" {
			t.Errorf("cipher does not use the configured key: Decrypt() = %q", got)
		}
	})

	t.Run("invalid hex key", func(t *testing.T) {
		cfg := config.EncryptionConfig{KeyHex: "abc"}
		if _, err := NewCipherFromConfig(cfg, nil, &recordingLogger{}); err == nil {
			t.Fatal("NewCipherFromConfig() expected error for invalid key")
		}
	})

	t.Run("key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "letterbox.key")
		if err := WriteKeyFile(path, testKey(0x22), "pw"); err != nil {
			t.Fatalf("WriteKeyFile() error = %v", err)
		}

		asked := 0
		passphrase := func() (string, error) {
			asked++
			return "pw", nil
		}

		c, err := NewCipherFromConfig(config.EncryptionConfig{KeyPath: path}, passphrase, &recordingLogger{})
		if err != nil {
			t.Fatalf("NewCipherFromConfig() error = %v", err)
		}
		if asked != 1 {
			t.Errorf("passphrase asked %d times, want 1", asked)
		}

		reference, _ := newTestCipher(t, 0x22)
		envelope, _ := reference.Encrypt("from file")
		if got := c.Decrypt(envelope); got != "from file" {
			t.Errorf("cipher does not use the key file: Decrypt() = %q", got)
		}
	})

	t.Run("no key fails fast", func(t *testing.T) {
		cfg := config.EncryptionConfig{KeyPath: filepath.Join(t.TempDir(), "missing.key")}
		_, err := NewCipherFromConfig(cfg, nil, &recordingLogger{})
		if !errors.Is(err, ErrNoKey) {
			t.Errorf("NewCipherFromConfig() error = %v, want ErrNoKey", err)
		}
	})

	t.Run("ephemeral key is announced", func(t *testing.T) {
		logger := &recordingLogger{}
		cfg := config.EncryptionConfig{AllowEphemeralKey: true}
		c, err := NewCipherFromConfig(cfg, nil, logger)
		if err != nil {
			t.Fatalf("NewCipherFromConfig() error = %v", err)
		}
		if c == nil {
			t.Fatal("NewCipherFromConfig() returned nil cipher")
		}
		if logger.warnCount() != 1 {
			t.Errorf("ephemeral mode logged %d warnings, want 1", logger.warnCount())
		}
	})
}
