// Package logging contains the structured logger used across the rigid-body model builder and its tools.
package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	globalMu     sync.RWMutex
	globalLogger = NewLogger("rigidbody")
)

// ReplaceGlobal replaces the logger returned by Global.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// Global returns the logger used when a caller passes none.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewZapLoggerConfig returns the console configuration of loggers obtained through AsZap. Stacktraces
// are disabled.
func NewZapLoggerConfig() zap.Config {
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.FunctionKey = zapcore.OmitKey
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding:          "console",
		EncoderConfig:     encoder,
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

// NewLogger returns a logger writing Info and above to stdout, with UTC timestamps.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewStdoutAppender())
}

// NewDebugLogger is like NewLogger but also writes Debug entries.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug logger without appenders; entries go nowhere until one is added.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug logger writing to the output of tb, with local timestamps.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records every entry for inspection.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), observed
}
