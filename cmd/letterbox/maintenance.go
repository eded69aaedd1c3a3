package main

import (
	"fmt"
	"strings"
	"time"

	"letterbox/internal/app"
	"letterbox/internal/encryption"
	"letterbox/internal/lb"

	"github.com/spf13/cobra"
)

// key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the field encryption key",
}

var keyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a key and store it in a passphrase-protected file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Encryption.KeyPath == "" {
			return fmt.Errorf("encryption.key_path is not set")
		}

		passphrase, err := app.NewPassphrase()
		if err != nil {
			return err
		}
		key, err := encryption.GenerateKey()
		if err != nil {
			return err
		}
		if err := encryption.WriteKeyFile(cfg.Encryption.KeyPath, key, passphrase); err != nil {
			return err
		}

		fmt.Printf("Key written to %s\n", pathText(cfg.Encryption.KeyPath))
		fmt.Println(warnText("Keep the passphrase safe: letters cannot be read without it."))
		return nil
	},
}

// remediate command
var remediateCmd = &cobra.Command{
	Use:   "remediate",
	Short: "Repair letters stored under an old or lost key",
	Long: `Normalizes every stored letter: titles become plaintext and messages
are encrypted under the current key. Fields that cannot be decrypted are
replaced with placeholders. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cmd.Context(), "Remediate")
		if err != nil {
			return err
		}
		defer a.Close()

		s, stop := startSpinner("Checking letters...")
		report, err := a.Remediate(cmd.Context(), lb.RemediateOptions{
			DryRun: dryRun,
			Progress: func(done, total int) {
				s.Lock()
				s.Suffix = fmt.Sprintf(" Checking letters... %d/%d", done, total)
				s.Unlock()
			},
		})
		if err != nil {
			stop(errorText("Remediation failed"))
			return err
		}
		stop("")

		printReport(report)
		return nil
	},
}

func printReport(r *lb.RemediationReport) {
	if r.DryRun {
		fmt.Println(warnText("Dry run: nothing was written."))
	}
	fmt.Printf("Letters:       %d\n", r.Total)
	fmt.Printf("Fixed:         %s\n", successText(fmt.Sprint(r.Fixed)))
	fmt.Printf("Already clean: %d\n", r.AlreadyClean)
	if r.Failed == 0 {
		fmt.Printf("Unrecoverable: 0\n")
		return
	}

	fmt.Printf("Unrecoverable: %s  %s\n", errorText(fmt.Sprint(r.Failed)), strings.Join(r.FailedIDs, ", "))
	fmt.Println("\nCommon causes:")
	for _, g := range r.Guidance {
		fmt.Printf("  - %s\n", g)
	}
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			status := op.Status
			switch status {
			case app.StatusSuccess:
				status = successText(status)
			case app.StatusError:
				status = errorText(status)
			}
			fmt.Printf("#%d  %-16s  %s  %-10s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		status, err := app.MigrateDatabase(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("%s (schema version %d)\n", successText("Database is up to date"), status.Current)
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database into the attachment store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "BackupDatabase")
		if err != nil {
			return err
		}
		defer a.Close()

		_, stop := startSpinner("Backing up database...")
		url, err := a.BackupDatabase(cmd.Context())
		if err != nil {
			stop(errorText("Backup failed"))
			return err
		}
		stop(fmt.Sprintf("%s %s", successText("Backup stored at"), url))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyInitCmd)

	remediateCmd.Flags().Bool("dry-run", false, "Report what would change without writing")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbBackupCmd)
}
