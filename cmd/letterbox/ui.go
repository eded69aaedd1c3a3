package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"

	"letterbox/internal/lb"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.FgYellow)
)

func successText(s string) string { return successColor.Sprint(s) }
func warnText(s string) string    { return warnColor.Sprint(s) }
func errorText(s string) string   { return errorColor.Sprint(s) }
func pathText(s string) string    { return infoColor.Sprint(s) }

func codeText(s string) string {
	if color.NoColor {
		return "`" + s + "`"
	}
	return codeColor.Sprint(s)
}

// stateText renders a letter's gate state.
func stateText(s lb.State) string {
	switch s {
	case lb.StateLocked:
		return warnText("locked  ")
	case lb.StateUnlockedUnread:
		return successText("unlocked")
	default:
		return infoColor.Sprint("opened  ")
	}
}

// startSpinner starts a spinner on stderr when it is a terminal.
// The returned stop function prints finalMsg on its own line.
func startSpinner(message string) (*spinner.Spinner, func(finalMsg string)) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	_ = s.Color("cyan")

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	if interactive {
		s.Start()
	}

	return s, func(finalMsg string) {
		if interactive {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Println(finalMsg)
		}
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
