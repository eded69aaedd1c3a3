package encryption

import (
	"errors"
	"fmt"
	"os"

	"letterbox/internal/config"
	"letterbox/internal/lb"
)

// ErrNoKey is returned when no key source is configured and ephemeral keys are not allowed.
var ErrNoKey = errors.New("no encryption key configured: set encryption.key_hex, LETTERBOX_ENCRYPTION_KEY, run `letterbox key init`, or enable encryption.allow_ephemeral_key")

// PassphraseFunc supplies the passphrase for an age-protected key file.
type PassphraseFunc func() (string, error)

// NewCipherFromConfig creates the field cipher from configured key material.
// Without a key it fails, unless ephemeral keys are explicitly allowed.
func NewCipherFromConfig(cfg config.EncryptionConfig, passphrase PassphraseFunc, logger lb.Logger) (*AESGCMCipher, error) {
	key, err := loadKey(cfg, passphrase, logger)
	if err != nil {
		return nil, err
	}
	return NewAESGCMCipher(key, logger)
}

func loadKey(cfg config.EncryptionConfig, passphrase PassphraseFunc, logger lb.Logger) ([]byte, error) {
	if cfg.KeyHex != "" {
		key, err := ParseKeyHex(cfg.KeyHex)
		if err != nil {
			return nil, fmt.Errorf("parsing key_hex: %w", err)
		}
		logger.Debug("encryption key loaded", "source", "hex")
		return key, nil
	}

	if cfg.KeyPath != "" {
		if _, err := os.Stat(cfg.KeyPath); err == nil {
			if passphrase == nil {
				return nil, fmt.Errorf("key file %s requires a passphrase", cfg.KeyPath)
			}
			pass, err := passphrase()
			if err != nil {
				return nil, fmt.Errorf("reading key file passphrase: %w", err)
			}
			key, err := ReadKeyFile(cfg.KeyPath, pass)
			if err != nil {
				return nil, err
			}
			logger.Debug("encryption key loaded", "source", "file", "path", cfg.KeyPath)
			return key, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking key file: %w", err)
		}
	}

	if !cfg.AllowEphemeralKey {
		return nil, ErrNoKey
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	logger.Warn("EPHEMERAL KEY MODE: no encryption key configured, using a random key for this process; letters written now will be unreadable after restart")
	return key, nil
}
