package geminiproxy

import (
	"io"
	"os"
	"time"

	"github.com/maximhq/geminiproxy/schemas"
	"github.com/rs/zerolog"
)

// DefaultLogger implements the Logger interface on top of zerolog.
// It writes JSON lines by default, which is what serverless log ingestion expects,
// and can switch to a human readable console format for local development.
// It is used as the default logger if no logger is provided in the ProxyConfig.
type DefaultLogger struct {
	out        io.Writer
	level      schemas.LogLevel
	outputType schemas.LoggerOutputType
	logger     zerolog.Logger
}

// NewDefaultLogger creates a new DefaultLogger writing to stdout at the given level.
func NewDefaultLogger(level schemas.LogLevel) *DefaultLogger {
	return newLoggerWithWriter(os.Stdout, level, schemas.LoggerOutputTypeJSON)
}

func newLoggerWithWriter(out io.Writer, level schemas.LogLevel, outputType schemas.LoggerOutputType) *DefaultLogger {
	logger := &DefaultLogger{
		out:        out,
		level:      level,
		outputType: outputType,
	}
	logger.rebuild()
	return logger
}

// rebuild recreates the underlying zerolog logger after a level or output change.
func (logger *DefaultLogger) rebuild() {
	var writer io.Writer = logger.out
	if logger.outputType == schemas.LoggerOutputTypePretty {
		writer = zerolog.ConsoleWriter{Out: logger.out, TimeFormat: time.RFC3339}
	}
	logger.logger = zerolog.New(writer).
		Level(toZerologLevel(logger.level)).
		With().
		Timestamp().
		Logger()
}

func toZerologLevel(level schemas.LogLevel) zerolog.Level {
	switch level {
	case schemas.LogLevelDebug:
		return zerolog.DebugLevel
	case schemas.LogLevelWarn:
		return zerolog.WarnLevel
	case schemas.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func write(event *zerolog.Event, msg string, args []any) {
	if len(args) == 0 {
		event.Msg(msg)
		return
	}
	event.Msgf(msg, args...)
}

// Debug logs a debug level message.
func (logger *DefaultLogger) Debug(msg string, args ...any) {
	write(logger.logger.Debug(), msg, args)
}

// Info logs an info level message.
func (logger *DefaultLogger) Info(msg string, args ...any) {
	write(logger.logger.Info(), msg, args)
}

// Warn logs a warning level message.
func (logger *DefaultLogger) Warn(msg string, args ...any) {
	write(logger.logger.Warn(), msg, args)
}

// Error logs an error level message.
func (logger *DefaultLogger) Error(msg string, args ...any) {
	write(logger.logger.Error(), msg, args)
}

// Fatal logs the message and exits the process with status 1.
func (logger *DefaultLogger) Fatal(msg string, args ...any) {
	write(logger.logger.Fatal(), msg, args)
}

// SetLevel changes the minimum level that is written.
func (logger *DefaultLogger) SetLevel(level schemas.LogLevel) {
	logger.level = level
	logger.rebuild()
}

// SetOutputType switches between JSON and console output.
func (logger *DefaultLogger) SetOutputType(outputType schemas.LoggerOutputType) {
	logger.outputType = outputType
	logger.rebuild()
}
