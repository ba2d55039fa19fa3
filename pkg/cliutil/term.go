package cliutil

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// GetTerminalWidth returns the column count that help text should wrap to.
func GetTerminalWidth() int {
	// COLUMNS wins if the shell or the user exports it.
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		return cols
	}

	// Otherwise measure stdout, since that's where the text is going.
	if cols, _, err := term.GetSize(1); err == nil {
		return cols
	}
	if term.IsTerminal(1) {
		return 80
	}

	// Not a terminal; 0 means "don't wrap".
	return 0
}
