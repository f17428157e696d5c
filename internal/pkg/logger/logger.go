package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// package-wide logger used by repositories and helpers without an injected one
var defaultLogger zerolog.Logger

// LogLevel is a zerolog level name
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config represents logger configuration
type Config struct {
	Level  LogLevel
	Pretty bool
	Output io.Writer
}

// ConfigFromStrings maps the logging section of the app config.
// Format "text" or "console" selects pretty output.
func ConfigFromStrings(level, format string) Config {
	format = strings.ToLower(format)
	return Config{
		Level:  LogLevel(strings.ToLower(strings.TrimSpace(level))),
		Pretty: format == "text" || format == "console",
	}
}

// Configure installs a new default logger and returns it for injection.
// Unknown levels fall back to info.
func Configure(config Config) zerolog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	if config.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(string(config.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	defaultLogger = zerolog.New(out).With().Timestamp().Str("service", "curriculum").Logger()
	log.Logger = defaultLogger
	return defaultLogger
}

func Info() *zerolog.Event  { return defaultLogger.Info() }
func Warn() *zerolog.Event  { return defaultLogger.Warn() }
func Error() *zerolog.Event { return defaultLogger.Error() }

func init() {
	Configure(Config{Level: InfoLevel, Pretty: true})
}
