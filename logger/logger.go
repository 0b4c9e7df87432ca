// Package logger provides logging capabilities.
// It is a thin wrapper around zerolog; every message is tagged with a
// sender so log lines from the login flow, the REST client and the
// credential store are easy to tell apart.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	dateFormat = "2006-01-02T15:04:05.000" // YYYY-MM-DDTHH:MM:SS.ZZZ
)

var (
	logger zerolog.Logger
)

func init() {
	// library default: warnings and errors to stderr until the host
	// application calls InitLogger
	zerolog.TimeFieldFormat = dateFormat
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// GetLogger get the configured logger instance
func GetLogger() *zerolog.Logger {
	return &logger
}

// InitLogger configures the logger.
// It sets the output writer and the log level
func InitLogger(output io.Writer, level zerolog.Level) {
	zerolog.TimeFieldFormat = dateFormat
	logger = zerolog.New(output).With().Timestamp().Logger().Level(level)
}

// Debug logs at debug level for the specified sender
func Debug(sender string, format string, v ...interface{}) {
	logger.Debug().Str("sender", sender).Msg(fmt.Sprintf(format, v...))
}

// Info logs at info level for the specified sender
func Info(sender string, format string, v ...interface{}) {
	logger.Info().Str("sender", sender).Msg(fmt.Sprintf(format, v...))
}

// Warn logs at warn level for the specified sender
func Warn(sender string, format string, v ...interface{}) {
	logger.Warn().Str("sender", sender).Msg(fmt.Sprintf(format, v...))
}

// Error logs at error level for the specified sender
func Error(sender string, format string, v ...interface{}) {
	logger.Error().Str("sender", sender).Msg(fmt.Sprintf(format, v...))
}

// LoginAttemptLog logs one step of a web login attempt, keyed by the
// attempt's flow ID so overlapping processes can be correlated.
func LoginAttemptLog(sender, flowID, step string, err error) {
	ev := logger.Info()
	if err != nil {
		ev = logger.Error().Err(err)
	}
	ev.Str("sender", sender).
		Str("flow_id", flowID).
		Str("step", step).
		Msg("")
}
