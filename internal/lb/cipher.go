package lb

// FieldCipher encrypts individual text fields into self-describing envelopes.
type FieldCipher interface {
	// Encrypt returns an envelope for plaintext. Empty input is returned unchanged.
	Encrypt(plaintext string) (string, error)

	// Decrypt returns the plaintext of an envelope. Input that is not an
	// envelope, or that fails authentication, is returned unchanged.
	Decrypt(value string) string

	// Open is the strict form of Decrypt: it reports why a value could not
	// be decrypted instead of passing it through.
	Open(value string) (string, error)

	// IsEnvelope reports whether value has the envelope shape.
	IsEnvelope(value string) bool
}
