package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent   = 74  // blue
	colorCmd      = 250 // light gray
	colorMuted    = 245 // medium gray
	colorActive   = 114 // green
	colorDegraded = 179 // yellow
	colorRetired  = 245 // gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorCmd, s)
}

// RenderStatus returns a resource status colored by lifecycle state.
// Unknown statuses are returned unstyled.
func RenderStatus(status string) string {
	if noColor {
		return status
	}
	var code int
	switch status {
	case "active":
		code = colorActive
	case "degraded":
		code = colorDegraded
	case "retired":
		code = colorRetired
	default:
		return status
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, status)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// ShouldUseColor reports whether ANSI colors should be written to stdout.
// NO_COLOR (any value) wins over everything; CLICOLOR_FORCE=1 wins over TTY
// detection; CLICOLOR=0 opts out; otherwise color follows stdout being a
// terminal.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) {
	case "", "0":
	default:
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
