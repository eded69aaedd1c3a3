package app

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"letterbox/internal/encryption"
)

// ReadPassphrase prompts on stderr and reads a passphrase from the terminal without echo.
func ReadPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot read passphrase: stdin is not a terminal (set %s)", EnvKeyPassphrase)
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(passphrase), nil
}

// KeyPassphrase returns the passphrase source for the key file:
// LETTERBOX_KEY_PASSPHRASE if set, otherwise an interactive prompt.
func KeyPassphrase() encryption.PassphraseFunc {
	return func() (string, error) {
		if v, ok := os.LookupEnv(EnvKeyPassphrase); ok {
			return v, nil
		}
		return ReadPassphrase("Key passphrase: ")
	}
}

// NewPassphrase asks for a passphrase twice and checks both entries match.
func NewPassphrase() (string, error) {
	if v, ok := os.LookupEnv(EnvKeyPassphrase); ok {
		if v == "" {
			return "", fmt.Errorf("%s is empty", EnvKeyPassphrase)
		}
		return v, nil
	}

	first, err := ReadPassphrase("New key passphrase: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	second, err := ReadPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	return first, nil
}
