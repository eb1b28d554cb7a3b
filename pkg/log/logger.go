// Package log provides structured logging for ATOM runs: slog JSON output
// with cockroachdb stack traces attached, plus a zerolog sink for library
// warnings.
package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	atomerrors "github.com/jaswinder9051998/ATOM/pkg/errors"
)

// SetupLogger installs the default slog logger used by the library.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// InstallWarningLogger routes library warnings (failed bagging resamples,
// ill-defined metrics) into a zerolog console logger. Structured warnings
// that implement zerolog.LogObjectMarshaler are embedded as objects.
func InstallWarningLogger(logger zerolog.Logger) {
	atomerrors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if marshaler, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event = event.EmbedObject(marshaler)
		}
		event.Msg(warning.Error())
	})
}

// DefaultWarningLogger installs a zerolog warning logger writing to stderr.
func DefaultWarningLogger() {
	InstallWarningLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
}
