package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger handed to the runner.
// --verbose wins over --log-level, which wins over LOG_LEVEL.
func NewLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(output).
		Level(determineLogLevel(w, level, verbose)).
		With().
		Timestamp().
		Logger()
}

func determineLogLevel(w io.Writer, level string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if level == "" {
		return zerolog.InfoLevel
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		fmt.Fprintf(w, "Warning: invalid log level %q, using %q\n", level, zerolog.InfoLevel.String())
		return zerolog.InfoLevel
	}
	return parsed
}
