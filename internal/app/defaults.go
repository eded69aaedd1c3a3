package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that relocate letterbox's files.
const (
	EnvConfigPath = "LETTERBOX_CONFIG_PATH"
	EnvHome       = "LETTERBOX_HOME"
	// EnvKeyPassphrase unlocks the key file without a terminal prompt.
	EnvKeyPassphrase = "LETTERBOX_KEY_PASSPHRASE"
)

// GetDefaults returns application default paths, checking environment variables first.
//   - LETTERBOX_CONFIG_PATH: config file location (default: ~/.config/letterbox.toml)
//   - LETTERBOX_HOME: base directory for letterbox data (default: ~/.local/share/letterbox)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"key_path":    filepath.Join(baseDir, "keys", "letterbox.key"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	configDir, err := userDir(".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "letterbox.toml"), nil
}

func getBaseDir() (string, error) {
	if path := os.Getenv(EnvHome); path != "" {
		return path, nil
	}

	shareDir, err := userDir(".local", "share")
	if err != nil {
		return "", err
	}
	return filepath.Join(shareDir, "letterbox"), nil
}

// userDir joins elem onto the user's home directory.
func userDir(elem ...string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
