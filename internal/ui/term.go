package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Start of an item: bold cyan
	colorStart = color.New(color.FgCyan, color.Bold)

	// Continuation of a multi-day item
	colorContinuation = color.New(color.FgCyan, color.Faint)

	// Skipped items and warnings
	colorWarning = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: green
	colorStats = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTerminal reports whether stdout is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output.
func EnableColor() {
	color.NoColor = false
}

// applyColorMode applies the ui.color setting. "auto" keeps fatih/color's
// own terminal detection.
func applyColorMode(mode string) {
	switch mode {
	case "always":
		EnableColor()
	case "never":
		DisableColor()
	}
}

func formatStart(s string) string {
	return colorStart.Sprint(s)
}

func formatContinuation(s string) string {
	return colorContinuation.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
