package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	base zerolog.Logger
	once sync.Once
)

// Init configures the global JSON logger on stdout.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
func Init() {
	InitWith(getenv("LOG_LEVEL", "info"), envPretty(), os.Stdout)
}

// InitWith configures the global logger explicitly. The CLI normalize mode
// points it at stderr so stdout carries only data.
func InitWith(level string, pretty bool, w io.Writer) {
	base = build(level, pretty, w)
	once.Do(func() {})
}

// L returns the global logger, configuring it from the environment on first
// use if neither Init nor InitWith ran.
func L() *zerolog.Logger {
	once.Do(func() {
		base = build(getenv("LOG_LEVEL", "info"), envPretty(), os.Stdout)
	})
	return &base
}

func build(level string, pretty bool, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
}

func envPretty() bool {
	return strings.EqualFold(getenv("LOG_PRETTY", "false"), "true")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
