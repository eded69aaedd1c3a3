package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/letterbox",
		LogDir:  "/home/user/.local/share/letterbox/log",
		Server:  ServerConfig{Addr: ":8080", MaxUploadSize: 1024},
		Encryption: EncryptionConfig{
			KeyPath:           "/home/user/.local/share/letterbox/keys/letterbox.key",
			AllowEphemeralKey: true,
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/letterbox/db"},
		Storage: StorageConfig{
			Type:        "s3",
			S3Bucket:    "letters",
			S3Region:    "eu-central-1",
			S3Endpoint:  "http://localhost:4566",
			S3PathStyle: true,
		},
		Notifications: NotificationsConfig{Type: "onesignal", OneSignalAppID: "app-1"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", got.Server.Addr, ":8080")
	}
	if got.Server.MaxUploadSize != 1024 {
		t.Errorf("Server.MaxUploadSize = %d, want %d", got.Server.MaxUploadSize, 1024)
	}
	if got.Encryption.KeyPath != original.Encryption.KeyPath {
		t.Errorf("Encryption.KeyPath = %q, want %q", got.Encryption.KeyPath, original.Encryption.KeyPath)
	}
	if !got.Encryption.AllowEphemeralKey {
		t.Error("Encryption.AllowEphemeralKey = false, want true")
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Storage.Type != "s3" || got.Storage.S3Bucket != "letters" {
		t.Errorf("Storage = %+v, want s3 bucket letters", got.Storage)
	}
	if !got.Storage.S3PathStyle {
		t.Error("Storage.S3PathStyle = false, want true")
	}
	if got.Notifications.OneSignalAppID != "app-1" {
		t.Errorf("Notifications.OneSignalAppID = %q, want %q", got.Notifications.OneSignalAppID, "app-1")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/letterbox")

	if cfg.BaseDir != "/data/letterbox" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/letterbox")
	}
	if cfg.LogDir != "/data/letterbox/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/letterbox/log")
	}
	if cfg.Encryption.KeyPath != "/data/letterbox/keys/letterbox.key" {
		t.Errorf("Encryption.KeyPath = %q, want %q", cfg.Encryption.KeyPath, "/data/letterbox/keys/letterbox.key")
	}
	if cfg.Encryption.AllowEphemeralKey {
		t.Error("Encryption.AllowEphemeralKey = true, want false by default")
	}
	if cfg.Database.DataDir != "/data/letterbox/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/letterbox/db")
	}
	if cfg.Storage.FSRoot != "/data/letterbox/photos" {
		t.Errorf("Storage.FSRoot = %q, want %q", cfg.Storage.FSRoot, "/data/letterbox/photos")
	}
	if cfg.Notifications.Type != "none" {
		t.Errorf("Notifications.Type = %q, want %q", cfg.Notifications.Type, "none")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "letterbox.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file permissions = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "letterbox.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "letterbox.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/letterbox.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ONESIGNAL_APP_ID", "env-app")
	t.Setenv("ONESIGNAL_REST_API_KEY", "env-key")
	t.Setenv("LETTERBOX_ENCRYPTION_KEY", "abcd")

	cfg := NewConfig(t.TempDir())
	cfg.Notifications.OneSignalAppID = "file-app"
	cfg.ApplyEnv()

	if cfg.Notifications.OneSignalAppID != "env-app" {
		t.Errorf("OneSignalAppID = %q, want %q", cfg.Notifications.OneSignalAppID, "env-app")
	}
	if cfg.Notifications.OneSignalAPIKey != "env-key" {
		t.Errorf("OneSignalAPIKey = %q, want %q", cfg.Notifications.OneSignalAPIKey, "env-key")
	}
	if cfg.Encryption.KeyHex != "abcd" {
		t.Errorf("Encryption.KeyHex = %q, want %q", cfg.Encryption.KeyHex, "abcd")
	}
}
