// Package terminal provides ANSI styling, TTY detection, and the text
// formatting helpers the run report uses.
package terminal

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// ANSI codes for the styles rcr renders.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Cyan    = "\033[36m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Red     = "\033[31m"
	Magenta = "\033[35m"
)

var (
	colorMu       sync.RWMutex
	colorsEnabled = true
)

// DisableColors turns off color output globally.
func DisableColors() {
	colorMu.Lock()
	colorsEnabled = false
	colorMu.Unlock()
}

// EnableColors turns on color output globally.
func EnableColors() {
	colorMu.Lock()
	colorsEnabled = true
	colorMu.Unlock()
}

// WithColorsDisabled runs fn with colors off and restores the previous
// state afterwards. Tests that assert on rendered output use this.
func WithColorsDisabled(fn func()) {
	colorMu.Lock()
	prev := colorsEnabled
	colorsEnabled = false
	colorMu.Unlock()

	defer func() {
		colorMu.Lock()
		colorsEnabled = prev
		colorMu.Unlock()
	}()

	fn()
}

// Color returns the code when colors are enabled, otherwise "".
func Color(c string) string {
	colorMu.RLock()
	defer colorMu.RUnlock()
	if colorsEnabled {
		return c
	}
	return ""
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY reports whether stderr is a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// GetTerminalWidth returns the stdout width, or 80 when it cannot be
// detected.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
