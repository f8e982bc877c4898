// Package logging configures the storefront's structured zerolog output.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	// LevelSilent disables output, used by commands printing JSON to a pipe.
	LevelSilent LogLevel = "silent"
)

// Component names used in the "component" field.
const (
	ComponentClient  = "storefront-client"
	ComponentCache   = "cache"
	ComponentCatalog = "catalog"
	ComponentCart    = "cart"
	ComponentOrders  = "orders"
	ComponentAuth    = "auth"
	ComponentGuard   = "inflight"
	ComponentCLI     = "cli"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output defaults to os.Stderr so stdout stays free for command output.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level. Unknown names mean
// info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent", "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: cache hits and misses, shared loads, outgoing requests, batch
// fetch progress.
//
// Info: successful mutations (cart changes, orders placed, sign in/out).
//
// Warn: backend failures, unreachable backend, cache store errors (reads
// fall through to the backend), duplicate submissions.
//
// Error: configuration errors and command failures.
//
// Context Fields:
//   - component: one of the Component* names
//   - endpoint: backend route, IDs folded (e.g. /product/:id)
//   - request_id: X-Request-ID sent with the call
//   - status: HTTP status of a failed call
//   - key / partition: cache key or partition
//   - operation: in-flight guard name (e.g. add:<productId>)
//   - descriptor: canonical listing query
