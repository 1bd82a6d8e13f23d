// Package logging configures the zerolog loggers used by the host and CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options tweak a profile. A zero value keeps the profile defaults.
type Options struct {
	Level   string
	Out     io.Writer
	NoColor bool
}

// New builds a console logger tagged with app.
func New(app string, profile Profile, opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: opts.NoColor}

	level := zerolog.InfoLevel
	if profile == ProfileTest {
		level = zerolog.DebugLevel
		writer.NoColor = true
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	if lvl, ok := ParseLevel(opts.Level); ok {
		level = lvl
	}

	ctx := zerolog.New(writer).Level(level).With().Str("app", app)
	if profile == ProfileRuntime {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// Configure builds the runtime logger and installs it as the global one.
func Configure(app, level string) zerolog.Logger {
	logger := New(app, ProfileRuntime, Options{Level: level})
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to zerolog. ok is false for empty or
// unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
