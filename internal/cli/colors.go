// Package cli provides colored terminal output for diagnostics.
package cli

import (
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

// ColorsEnabled controls whether colored output is emitted.
// Disabled automatically when stderr is not a terminal or NO_COLOR is set.
var ColorsEnabled = true

func init() {
	// Respect NO_COLOR (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		ColorsEnabled = false
		return
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		ColorsEnabled = false
	}
}

// DisableColors turns off colored output.
func DisableColors() {
	ColorsEnabled = false
}

func colorize(color, text string) string {
	if !ColorsEnabled {
		return text
	}
	return color + text + reset
}

// Error formats text in red.
func Error(text string) string {
	return colorize(red, text)
}

// Success formats text in green.
func Success(text string) string {
	return colorize(green, text)
}

// Warning formats text in yellow.
func Warning(text string) string {
	return colorize(yellow, text)
}

// Filename formats a filename or path in cyan.
func Filename(text string) string {
	return colorize(cyan, text)
}

// Bold formats text in bold.
func Bold(text string) string {
	if !ColorsEnabled {
		return text
	}
	return bold + text + reset
}
