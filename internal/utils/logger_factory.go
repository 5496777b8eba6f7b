package utils

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant         = "debug"
	logLevelInfoStringConstant          = "info"
	logLevelWarnStringConstant          = "warn"
	logLevelErrorStringConstant         = "error"
	logFormatStructuredStringConstant   = "structured"
	logFormatConsoleStringConstant      = "console"
	jsonZapEncodingStringConstant       = "json"
	consoleZapEncodingStringConstant    = "console"
	unsupportedLogLevelMessageConstant  = "unsupported log level"
	unsupportedLogFormatMessageConstant = "unsupported log format"
	unsupportedValueTemplateConstant    = "%w: %s"
	loggerBuildErrorTemplateConstant    = "unable to build logger: %w"
	verbosityWarnThresholdConstant      = 1
	verbosityInfoThresholdConstant      = 2
	verbosityDebugThresholdConstant     = 3
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// ErrUnsupportedLogLevel indicates a log level outside debug, info, warn, and error.
var ErrUnsupportedLogLevel = errors.New(unsupportedLogLevelMessageConstant)

// ErrUnsupportedLogFormat indicates a log format outside structured and console.
var ErrUnsupportedLogFormat = errors.New(unsupportedLogFormatMessageConstant)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// LogLevelForVerbosity maps a repeated -v count onto a log level.
func LogLevelForVerbosity(verbosity int) LogLevel {
	switch {
	case verbosity >= verbosityDebugThresholdConstant:
		return LogLevelDebug
	case verbosity >= verbosityInfoThresholdConstant:
		return LogLevelInfo
	case verbosity >= verbosityWarnThresholdConstant:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// ParseLogLevel normalizes a configured log level.
func ParseLogLevel(value string) (LogLevel, error) {
	candidate := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, supported := logLevelMapping[candidate]; !supported {
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogLevel, value)
	}
	return candidate, nil
}

// ParseLogFormat normalizes a configured log format.
func ParseLogFormat(value string) (LogFormat, error) {
	candidate := LogFormat(strings.ToLower(strings.TrimSpace(value)))
	if _, supported := logFormatEncodingMapping[candidate]; !supported {
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogFormat, value)
	}
	return candidate, nil
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	outputPaths []string
}

// NewLoggerFactory constructs a logger factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{outputPaths: []string{"stderr"}}
}

// WithOutputPaths returns a factory writing to the provided zap sink paths.
func (factory *LoggerFactory) WithOutputPaths(outputPaths ...string) *LoggerFactory {
	return &LoggerFactory{outputPaths: append([]string(nil), outputPaths...)}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
// Console loggers omit caller and stack information to keep CLI output readable.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogLevel, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogFormat, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.OutputPaths = factory.outputPaths
	configuration.ErrorOutputPaths = factory.outputPaths
	configuration.Sampling = nil
	if requestedLogFormat == LogFormatConsole {
		configuration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		configuration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		configuration.DisableCaller = true
		configuration.DisableStacktrace = true
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, fmt.Errorf(loggerBuildErrorTemplateConstant, buildError)
	}

	return logger, nil
}
