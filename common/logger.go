package common

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LogFormatJSONValue = "json"
	LogFormatTextValue = "text"
)

var (
	errUnknownLogLevel  = fmt.Errorf("unknown log level")
	errUnknownLogFormat = fmt.Errorf("unknown log format")
)

// GetLogger builds a logger writing to stderr at the given level. Text format
// uses zerolog's console writer; json writes one object per line.
func GetLogger(logLevelStr string, logFormat string) (zerolog.Logger, error) {
	return NewLogger(os.Stderr, logLevelStr, logFormat)
}

// NewLogger is GetLogger with an explicit destination.
func NewLogger(out io.Writer, logLevelStr string, logFormat string) (zerolog.Logger, error) {
	var logLevel zerolog.Level
	switch logLevelStr {
	case zerolog.LevelDebugValue:
		logLevel = zerolog.DebugLevel
	case zerolog.LevelInfoValue:
		logLevel = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		logLevel = zerolog.WarnLevel
	case zerolog.LevelErrorValue:
		logLevel = zerolog.ErrorLevel
	default:
		return zerolog.Logger{}, fmt.Errorf("log level %s: %w", logLevelStr, errUnknownLogLevel)
	}

	var formatWriter io.Writer
	switch logFormat {
	case LogFormatJSONValue:
		formatWriter = out
	case LogFormatTextValue:
		formatWriter = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("log format %s: %w", logFormat, errUnknownLogFormat)
	}

	if logLevel == zerolog.DebugLevel {
		return zerolog.New(formatWriter).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Int("pid", os.Getpid()).Logger(), nil
	}
	return zerolog.New(formatWriter).
		Level(logLevel).
		With().
		Timestamp().
		Logger(), nil
}

// SetDefaultLogger installs the logger as the package-level zerolog logger.
func SetDefaultLogger(logLevelStr string, logFormat string) error {
	logger, err := GetLogger(logLevelStr, logFormat)
	if err != nil {
		return fmt.Errorf("get logger: %w", err)
	}
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return nil
}
