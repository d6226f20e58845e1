package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// The terminal palette borrows the default slide theme so plan output and
// the rendered talk read the same.
var (
	colorAccent    = lipgloss.Color("#7cc5ff")
	colorAccentAlt = lipgloss.Color("#ffd166")
	colorOK        = lipgloss.Color("#83c167")
	colorError     = lipgloss.Color("#FC6255")
	colorMuted     = lipgloss.Color("245")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccentAlt)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorAccentAlt)

	styleError = lipgloss.NewStyle().Foreground(colorError)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

// printWarning colors the whole line, not only the icon.
func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleWarning.Render(iconWarning+" "+fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleDim.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}
