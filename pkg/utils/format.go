package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Truncate keeps at most max runes of s. No ellipsis is added.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NewErrorColor returns red highlighting that is enabled only when w is a
// terminal and NO_COLOR is unset. color.NoColor tracks stdout, not w.
func NewErrorColor(w io.Writer) *color.Color {
	c := color.New(color.FgRed)
	if isTerminal(w) && os.Getenv("NO_COLOR") == "" {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintError writes message as a single highlighted line.
func PrintError(w io.Writer, c *color.Color, message string) {
	if c == nil {
		c = NewErrorColor(w)
	}
	c.Fprintln(w, message)
}
