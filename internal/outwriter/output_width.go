package outwriter

import (
	"os"

	"github.com/huangsam/cgmprep/internal/contract"
	"golang.org/x/term"
)

// GetTerminalWidth returns the configured width override or the detected terminal width.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxColumnLabelWidth calculates the widest header label that lets numCols
// preview columns fit the terminal.
func GetMaxColumnLabelWidth(cfg *contract.Config, numCols int) int {
	if numCols <= 0 {
		return 20
	}

	// Reserve space for the row number, the range label and table borders
	available := GetTerminalWidth(cfg) - 20

	// Three characters of separator and padding per column
	width := available/numCols - 3
	if width < 6 {
		// Minimum width that keeps a readable prefix
		return 6
	}
	if width > 20 {
		return 20
	}
	return width
}
