// Package logging builds the zerolog loggers handed to the scanner, cache
// and engine.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Level names accepted by New.
const (
	LevelDebug  = "debug"
	LevelInfo   = "info"
	LevelWarn   = "warn"
	LevelError  = "error"
	LevelSilent = "silent"
)

// Format names accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelInfo, "":
		return zerolog.InfoLevel, nil
	case LevelWarn:
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	case LevelSilent:
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New returns a timestamped logger writing to w.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	case FormatJSON:
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
