package ui

import (
	"fmt"
	"strings"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorPass   = 114 // green
	colorWarn   = 179 // amber
	colorFail   = 203 // red
)

var noColor bool

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderStatus colors a record status: live states green, paused and
// scheduled ones amber, finished ones red, anything else muted.
func RenderStatus(s string) string {
	switch strings.ToLower(s) {
	case "active", "published", "running":
		return render(colorPass, s)
	case "paused", "scheduled", "shared":
		return render(colorWarn, s)
	case "expired", "ended", "used":
		return render(colorFail, s)
	}
	return RenderMuted(s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
