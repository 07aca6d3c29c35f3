// Package logger provides a thin wrapper around zerolog.Logger shared by
// the capture, training and recognition pipelines.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available
// directly on *Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a *Logger for the given component label ("cli", "web", …).
// Output is JSON on stdout; the level comes from PRESENCIA_LOG_LEVEL
// (default info).
func New(component string) *Logger {
	return NewWithOutput(component, os.Stdout)
}

// NewWithOutput is New with an explicit output writer, used by tests.
func NewWithOutput(component string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(os.Getenv("PRESENCIA_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(w).Level(level).With().
		Str("component", component).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
