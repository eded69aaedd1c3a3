package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"letterbox/internal/lb"

	"github.com/spf13/cobra"
)

var lettersCmd = &cobra.Command{
	Use:     "letters",
	Aliases: []string{"letter"},
	Short:   "Manage letters",
}

var lettersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List letters, soonest to unlock first",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd.Context(), "ListLetters")
		if err != nil {
			return err
		}
		defer a.Close()

		letters, err := a.ListLetters(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(letters)
		}
		if len(letters) == 0 {
			fmt.Println("No letters yet.")
			return nil
		}

		now := time.Now()
		for _, l := range letters {
			photos := ""
			if n := len(l.Attachments); n > 0 {
				photos = fmt.Sprintf("  [%d photo(s)]", n)
			}
			fmt.Printf("%s  %s  %s  %s%s\n", l.ID, stateText(lb.StateAt(l, now)), formatTime(l.OpenAt), l.Title, photos)
		}
		return nil
	},
}

var lettersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a letter without opening it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "GetLetter")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.GetLetter(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		state := lb.StateAt(l, time.Now())
		fmt.Printf("%s  %s\n", l.Title, stateText(state))
		fmt.Printf("Opens:   %s\n", formatTime(l.OpenAt))
		if l.OpenedAt != nil {
			fmt.Printf("Opened:  %s\n", formatTime(*l.OpenedAt))
		}
		if state != lb.StateLocked {
			fmt.Printf("\n%s\n", l.Message)
		}
		for _, att := range l.Attachments {
			fmt.Printf("Photo:   %s\n", att.RemoteURL)
		}
		return nil
	},
}

var lettersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new letter",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		message, _ := cmd.Flags().GetString("message")
		openAtRaw, _ := cmd.Flags().GetString("open-at")
		photos, _ := cmd.Flags().GetStringSlice("photo")
		sender, _ := cmd.Flags().GetString("sender")

		if message == "-" {
			data, err := readAllStdin()
			if err != nil {
				return err
			}
			message = data
		}

		openAt, err := parseOpenAt(openAtRaw)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "CreateLetter")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.CreateLetter(cmd.Context(), title, message, openAt, photos, sender)
		if err != nil {
			return fmt.Errorf("creating letter: %w", err)
		}

		fmt.Printf("%s letter %s, opens %s\n", successText("Created"), l.ID, formatTime(l.OpenAt))
		return nil
	},
}

var lettersOpenCmd = &cobra.Command{
	Use:   "open ID",
	Short: "Open a letter whose time has come",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "OpenLetter")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.OpenLetter(cmd.Context(), args[0])
		var gate *lb.NotYetOpenError
		if errors.As(err, &gate) {
			wait := time.Until(gate.OpenAt).Round(time.Minute)
			return fmt.Errorf("this letter cannot be opened until %s (%s from now)", formatTime(gate.OpenAt), wait)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n%s\n", l.Title, l.Message)
		for _, att := range l.Attachments {
			fmt.Printf("Photo: %s\n", att.RemoteURL)
		}
		return nil
	},
}

var lettersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a letter and its photos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "DeleteLetter")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteLetter(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s letter %s\n", successText("Deleted"), args[0])
		return nil
	},
}

// parseOpenAt accepts RFC 3339, or a local date and optional time.
func parseOpenAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("--open-at is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse --open-at %q: use RFC 3339 or YYYY-MM-DD [HH:MM]", raw)
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading message from stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	lettersCmd.AddCommand(lettersListCmd)
	lettersListCmd.Flags().Bool("json", false, "Print letters as JSON")

	lettersCmd.AddCommand(lettersShowCmd)

	lettersCmd.AddCommand(lettersCreateCmd)
	lettersCreateCmd.Flags().StringP("title", "t", "", "Letter title")
	lettersCreateCmd.Flags().StringP("message", "m", "", "Letter body, or - to read it from stdin")
	lettersCreateCmd.Flags().StringP("open-at", "o", "", "When the letter unlocks")
	lettersCreateCmd.Flags().StringSliceP("photo", "p", nil, "Photo to attach (repeatable, at most 5)")
	lettersCreateCmd.Flags().String("sender", "", "Player ID of the sending device; other devices are notified")
	lettersCreateCmd.MarkFlagRequired("title")
	lettersCreateCmd.MarkFlagRequired("message")
	lettersCreateCmd.MarkFlagRequired("open-at")

	lettersCmd.AddCommand(lettersOpenCmd)
	lettersCmd.AddCommand(lettersDeleteCmd)
}
