package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"letterbox/internal/app"
	"letterbox/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies environment overrides.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates an LBApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "CreateLetter", "Serve").
func newApp(ctx context.Context, operation string) (*app.LBApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewLBApp(ctx, cfg, operation, app.KeyPassphrase())
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "letterbox",
	Short:        "Time-locked love letters with push notifications",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", pathText(defaults["config_path"]))
		fmt.Printf("Base Dir: %s\n", pathText(defaults["base_dir"]))
		fmt.Printf("Next: run %s and %s\n", codeText("letterbox key init"), codeText("letterbox db migrate"))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", pathText(path))
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Listen:        %s\n", cfg.Server.Addr)
		fmt.Printf("Database:      %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Storage:       %s\n", describeStorage(cfg.Storage))
		fmt.Printf("Notifications: %s\n", describeNotifications(cfg.Notifications))
		fmt.Printf("Encryption:    %s\n", describeKey(cfg.Encryption))
		return nil
	},
}

func describeStorage(s config.StorageConfig) string {
	switch s.Type {
	case "filesystem":
		return "filesystem " + s.FSRoot
	case "s3":
		return fmt.Sprintf("s3 bucket=%s region=%s", s.S3Bucket, s.S3Region)
	default:
		return s.Type
	}
}

func describeNotifications(n config.NotificationsConfig) string {
	if n.Type != "onesignal" {
		return n.Type
	}
	if n.OneSignalAppID == "" || n.OneSignalAPIKey == "" {
		return "onesignal " + warnText("(credentials missing, notifications disabled)")
	}
	return "onesignal app=" + n.OneSignalAppID
}

func describeKey(e config.EncryptionConfig) string {
	switch {
	case e.KeyHex != "":
		return "hex key"
	case e.KeyPath != "":
		if _, err := os.Stat(e.KeyPath); err == nil {
			return "key file " + e.KeyPath
		}
		if e.AllowEphemeralKey {
			return warnText("ephemeral (key file missing)")
		}
		return errorText("key file missing: " + e.KeyPath)
	case e.AllowEphemeralKey:
		return warnText("ephemeral")
	default:
		return errorText("none")
	}
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(ctx)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lettersCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(remediateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dbCmd)
}
