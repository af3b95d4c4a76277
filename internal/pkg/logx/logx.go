/*
Package logx wraps zerolog for the gateway, the relay hub and the client core.

InitGlobalLogger picks a human-readable console writer in development and JSON
everywhere else. The package-level helpers take a message followed by
key/value pairs; components that live for a long time derive their own logger
with Component.
*/
package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global zerolog logger.
// Development: debug level on a colored console writer (stderr).
// Otherwise: info level, JSON on stdout.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel

	if isDevelopment {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	SetOutput(out, level)
}

// SetOutput replaces the global logger's writer and level. Tests use it to
// silence or capture log output.
func SetOutput(w io.Writer, level zerolog.Level) {
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

// Logger returns a pointer to the global zerolog.Logger instance.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// checkFields drops the key/value list when it has an odd length, since
// zerolog's Fields would otherwise misalign keys and values.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msg("logx call received an odd number of fields, fields dropped")
		return nil
	}
	return fields
}

// Debug records a message at debug level.
func Debug(msg string, fields ...any) {
	Logger().Debug().Fields(checkFields("Debug", fields)).CallerSkipFrame(1).Msg(msg)
}

// Info records a message at info level.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(checkFields("Info", fields)).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at warn level.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(checkFields("Warn", fields)).CallerSkipFrame(1).Msg(msg)
}

// Error records an error with a message at error level.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(checkFields("Error", fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal records an error at fatal level and exits the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(checkFields("Fatal", fields)).CallerSkipFrame(1).Msg(msg)
}
