// Package logger configures the process-wide zerolog logger for the
// command-line tools.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// select info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Configure sets the global level and writer and returns the logger.
// level overrides LOG_LEVEL when set. LOG_TYPE=json switches from the
// console format to JSON lines.
func Configure(level string) zerolog.Logger {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(ParseLevel(level))

	log.Logger = New(os.Stderr, strings.EqualFold(os.Getenv("LOG_TYPE"), "json"))
	zerolog.DefaultContextLogger = &log.Logger
	return log.Logger
}

// New returns a logger writing to out, as JSON lines or console text.
func New(out io.Writer, asJSON bool) zerolog.Logger {
	if asJSON {
		return zerolog.New(out).With().Timestamp().Logger()
	}
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	w := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: "15:04:05.000",
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
