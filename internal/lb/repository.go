package lb

import (
	"context"
	"fmt"
)

// CapsuleRepository is the only path between LBService and stored capsules.
// It owns the storage codec: messages are encrypted by encodeForStorage on
// the way in and decrypted by decodeFromStorage on every way out.
type CapsuleRepository struct {
	database Database
	cipher   FieldCipher
	logger   Logger
}

// NewCapsuleRepository creates a repository over database using cipher for the message field.
func NewCapsuleRepository(database Database, cipher FieldCipher, logger Logger) *CapsuleRepository {
	return &CapsuleRepository{
		database: database,
		cipher:   cipher,
		logger:   orNop(logger),
	}
}

// encodeForStorage returns a copy of c with the message in its at-rest form.
// A message that already has the envelope shape is stored as-is so that
// re-saving a record never double-encrypts it. Titles stay plaintext.
func (r *CapsuleRepository) encodeForStorage(c *Capsule) (*Capsule, error) {
	out := c.clone()
	if out.Message == "" || r.cipher.IsEnvelope(out.Message) {
		return out, nil
	}

	encrypted, err := r.cipher.Encrypt(out.Message)
	if err != nil {
		r.logger.Error("message encryption failed", "id", c.ID, "error", err)
		return nil, fmt.Errorf("encrypting message: %w", err)
	}
	out.Message = encrypted
	return out, nil
}

// decodeFromStorage returns a copy of c with the message decrypted.
// Undecryptable messages come back as stored; the cipher logs the failure.
func (r *CapsuleRepository) decodeFromStorage(c *Capsule) *Capsule {
	out := c.clone()
	out.Message = r.cipher.Decrypt(out.Message)
	if out.Attachments == nil {
		out.Attachments = []Attachment{}
	}
	return out
}

// Create persists c and returns the decoded record as stored.
func (r *CapsuleRepository) Create(ctx context.Context, c *Capsule) (*Capsule, error) {
	stored, err := r.encodeForStorage(c)
	if err != nil {
		return nil, err
	}
	if err := r.database.CreateCapsule(ctx, stored); err != nil {
		return nil, fmt.Errorf("creating letter: %w", err)
	}
	return r.decodeFromStorage(stored), nil
}

// Get returns the decoded capsule, or nil if it does not exist.
func (r *CapsuleRepository) Get(ctx context.Context, id string) (*Capsule, error) {
	stored, err := r.database.FindCapsuleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding letter: %w", err)
	}
	if stored == nil {
		return nil, nil
	}
	return r.decodeFromStorage(stored), nil
}

// List returns all capsules decoded, ordered by OpenAt ascending.
func (r *CapsuleRepository) List(ctx context.Context) ([]*Capsule, error) {
	stored, err := r.database.ListCapsules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing letters: %w", err)
	}
	out := make([]*Capsule, len(stored))
	for i, c := range stored {
		out[i] = r.decodeFromStorage(c)
	}
	return out, nil
}

// RawCapsules returns capsules exactly as stored. Only the remediation
// pass should look at undecoded rows.
func (r *CapsuleRepository) RawCapsules(ctx context.Context) ([]*Capsule, error) {
	stored, err := r.database.ListCapsules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing letters: %w", err)
	}
	return stored, nil
}
