// Package logger builds the console's zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the process logger writing to stderr and installs it as the
// default context logger.
func New(level, format string) zerolog.Logger {
	l := build(os.Stderr, level, format)
	zerolog.DefaultContextLogger = &l
	return l
}

func build(out io.Writer, level, format string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
		// The real logger is not built yet.
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", level)
	}

	switch strings.ToLower(format) {
	case FormatJSON:
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		fmt.Fprintf(os.Stderr, "Unknown log format '%s', defaulting to '%s'\n", format, FormatConsole)
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	goVersion, revision := buildInfo()
	return zerolog.New(out).
		Level(logLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Str("go_version", goVersion).
		Str("git_revision", revision).
		Logger()
}

func buildInfo() (goVersion, revision string) {
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown", revision
	}
	for _, v := range info.Settings {
		if v.Key == "vcs.revision" {
			revision = v.Value
			break
		}
	}
	return info.GoVersion, revision
}

// Component returns a child of l tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
