package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"letterbox/internal/lb"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// nonceSize matches envelopes written by earlier deployments (16-byte IV).
	nonceSize = 16
	tagSize   = 16

	envelopeSep = ":"
)

var (
	// ErrNotEnvelope is returned by Open for values without the envelope shape.
	ErrNotEnvelope = errors.New("value is not an encrypted envelope")

	// ErrAuthenticationFailed is returned by Open when the tag does not verify,
	// usually because the value was encrypted under another key.
	ErrAuthenticationFailed = errors.New("envelope authentication failed")
)

// AESGCMCipher implements lb.FieldCipher with AES-256-GCM.
//
// Envelopes have the form <nonce-hex>:<tag-hex>:<ciphertext-hex>. Every
// Encrypt call draws a fresh random nonce, so equal plaintexts never
// produce equal envelopes.
type AESGCMCipher struct {
	aead   cipher.AEAD
	logger lb.Logger
}

var _ lb.FieldCipher = (*AESGCMCipher)(nil)

// NewAESGCMCipher creates a cipher from a 32-byte key.
func NewAESGCMCipher(key []byte, logger lb.Logger) (*AESGCMCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &AESGCMCipher{aead: aead, logger: logger}, nil
}

// Encrypt seals plaintext into an envelope. Empty input is returned unchanged.
func (c *AESGCMCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, envelopeSep), nil
}

// Decrypt opens an envelope. Values that are not envelopes are returned as-is,
// and so are envelopes that fail authentication; the latter are logged.
// Reads never fail because of the cipher.
func (c *AESGCMCipher) Decrypt(value string) string {
	if value == "" {
		return value
	}
	plaintext, err := c.Open(value)
	if err != nil {
		if !errors.Is(err, ErrNotEnvelope) {
			c.logger.Warn("field decryption failed, returning stored value", "error", err)
		}
		return value
	}
	return plaintext
}

// Open opens an envelope, reporting ErrNotEnvelope or ErrAuthenticationFailed.
func (c *AESGCMCipher) Open(value string) (string, error) {
	nonce, tag, ciphertext, ok := splitEnvelope(value)
	if !ok {
		return "", ErrNotEnvelope
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	return string(plaintext), nil
}

// IsEnvelope reports whether value has the envelope shape.
func (c *AESGCMCipher) IsEnvelope(value string) bool {
	return LooksLikeEnvelope(value)
}

// LooksLikeEnvelope reports whether s is three hex components separated by
// exactly two colons, with a 16-byte nonce, a 16-byte tag and a non-empty
// ciphertext. It says nothing about which key produced it.
func LooksLikeEnvelope(s string) bool {
	_, _, _, ok := splitEnvelope(s)
	return ok
}

func splitEnvelope(s string) (nonce, tag, ciphertext []byte, ok bool) {
	parts := strings.Split(s, envelopeSep)
	if len(parts) != 3 {
		return nil, nil, nil, false
	}
	if len(parts[0]) != 2*nonceSize || len(parts[1]) != 2*tagSize || parts[2] == "" {
		return nil, nil, nil, false
	}

	var err error
	if nonce, err = hex.DecodeString(parts[0]); err != nil {
		return nil, nil, nil, false
	}
	if tag, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, false
	}
	if ciphertext, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, false
	}
	return nonce, tag, ciphertext, true
}
