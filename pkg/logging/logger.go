// Package logging configures zerolog for the Sunlight client and proxy and
// names the fields shared by their log lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a minimum log level name.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Components emitting log lines.
const (
	ComponentClient    = "sunlight-client"
	ComponentPaginator = "paginator"
	ComponentProxy     = "proxy"
)

// Field names shared across components.
const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldOperation = "operation"
	FieldCallID    = "call_id"
)

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global logger and level. Unknown levels fall back to info.
// Component loggers capture the global logger when they are created, so Setup
// runs before any client or paginator is built.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("requested_level", string(cfg.Level)).Msg("Unknown log level, using info")
	}
	return log.Logger
}

// ParseLevel maps a level name to its zerolog level. "warning" is accepted for warn.
func ParseLevel(level LogLevel) (zerolog.Level, error) {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger derives a component logger from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str(FieldComponent, component).Logger()
}

// ForService tags logger with a Sunlight API name (congress, openstates, capitolwords).
func ForService(logger zerolog.Logger, service string) zerolog.Logger {
	return logger.With().Str(FieldService, service).Logger()
}

// ForCall tags logger with one invocation of a named operation. Every page
// load of a paged call carries the same call id.
func ForCall(logger zerolog.Logger, operation, callID string) zerolog.Logger {
	return logger.With().
		Str(FieldOperation, operation).
		Str(FieldCallID, callID).
		Logger()
}

// Log Level Guidelines:
//
// Debug: request flow (service, path), page loads (operation, page, per_page,
// call_id), paging stop reasons, quota state updates.
//
// Info: server startup/shutdown, streamed proxy requests.
//
// Warn: upstream error responses, quota throttling, quota store errors.
//
// Error: network failures, quota blocks, configuration errors.
