package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for letterbox.
type Config struct {
	BaseDir       string              `toml:"base_dir"`
	LogDir        string              `toml:"log_dir"`
	Server        ServerConfig        `toml:"server"`
	Encryption    EncryptionConfig    `toml:"encryption"`
	Database      DatabaseConfig      `toml:"database"`
	Storage       StorageConfig       `toml:"storage"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr          string `toml:"addr"`            // default ":5000"
	MaxUploadSize int64  `toml:"max_upload_size"` // bytes per request; defaults to 50MB
}

// EncryptionConfig holds the field encryption key material.
// Exactly one source is used, in order: the LETTERBOX_ENCRYPTION_KEY
// environment variable, KeyHex, then the age-protected KeyPath.
type EncryptionConfig struct {
	KeyHex  string `toml:"key_hex,omitempty"`  // 64 hex characters
	KeyPath string `toml:"key_path,omitempty"` // key file written by `letterbox key init`

	// AllowEphemeralKey permits starting without a key by generating a random
	// one. Everything written in that mode is unreadable after a restart.
	AllowEphemeralKey bool `toml:"allow_ephemeral_key"`
}

// DatabaseConfig represents configuration for the capsule database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// StorageConfig represents configuration for the photo attachment store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "memory", "filesystem" or "s3"

	// PublicBaseURL, if set, is joined with the object key to build photo URLs.
	PublicBaseURL string `toml:"public_base_url,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`   // custom endpoint, e.g. LocalStack or MinIO
	S3PathStyle       bool   `toml:"s3_path_style,omitempty"` // required by most S3-compatible servers
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// NotificationsConfig represents configuration for the push provider.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type NotificationsConfig struct {
	Type string `toml:"type"` // "onesignal", "memory" or "none"

	// OneSignal-specific fields (only used when Type == "onesignal").
	// ONESIGNAL_APP_ID and ONESIGNAL_REST_API_KEY override these when set.
	OneSignalAppID  string `toml:"onesignal_app_id,omitempty"`
	OneSignalAPIKey string `toml:"onesignal_api_key,omitempty"`
	OneSignalURL    string `toml:"onesignal_url,omitempty"` // defaults to the public API
}

// NewConfig creates a new Config with the provided base directory and local defaults.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Server: ServerConfig{
			Addr:          ":5000",
			MaxUploadSize: 50 << 20,
		},
		Encryption: EncryptionConfig{
			KeyPath: filepath.Join(baseDir, "keys", "letterbox.key"),
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Storage: StorageConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "photos"),
		},
		Notifications: NotificationsConfig{
			Type: "none",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// The file may hold secrets, so it is created readable by the owner only.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides secrets from the environment so they need not live in the file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ONESIGNAL_APP_ID"); v != "" {
		c.Notifications.OneSignalAppID = v
	}
	if v := os.Getenv("ONESIGNAL_REST_API_KEY"); v != "" {
		c.Notifications.OneSignalAPIKey = v
	}
	if v := os.Getenv("LETTERBOX_ENCRYPTION_KEY"); v != "" {
		c.Encryption.KeyHex = v
	}
}
