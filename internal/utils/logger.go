package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared by every log line that carries them
const (
	FieldComponent = "component"
	FieldManifest  = "manifest"
	FieldTarget    = "target"
)

// Logger is a wrapper around zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// LoggerOptions contains options for creating a logger
type LoggerOptions struct {
	Level   string
	Format  string // "pretty" or "json"
	Output  io.Writer
	Verbose bool
	// NoColor disables ANSI colors in pretty output
	NoColor bool
}

// NewLogger creates a logger. Output defaults to stderr so command output on
// stdout stays machine readable.
func NewLogger(opts LoggerOptions) *Logger {
	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}

	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLogLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return &Logger{
		Logger: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// parseLogLevel accepts debug, info, warn and error. Anything else is info.
func parseLogLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l < zerolog.DebugLevel || l > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return l
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With().Str(key, value).Logger()}
}

// WithComponent tags lines with the emitting package
func (l *Logger) WithComponent(component string) *Logger {
	return l.with(FieldComponent, component)
}

// WithManifest tags lines with a manifest name
func (l *Logger) WithManifest(name string) *Logger {
	return l.with(FieldManifest, name)
}

// WithTarget tags lines with a resolution target fingerprint
func (l *Logger) WithTarget(target string) *Logger {
	return l.with(FieldTarget, target)
}
