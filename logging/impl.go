package logging

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl fans every enabled entry out to its appenders. Subloggers start from a copy of the parent's appenders
// and own their level.
type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

// callerSkip steps over runtime.Caller, newEntry, emit and the exported level method.
const callerSkip = 4

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:      name,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: slices.Clone(imp.appenders),
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	config := NewZapLoggerConfig()
	config.Level = GlobalLogLevel
	sugared := zap.Must(config.Build()).Sugar().Named(imp.name)

	// Appenders that are zap cores themselves, like the test observer, keep receiving entries.
	for _, appender := range imp.appenders {
		core, ok := appender.(zapcore.Core)
		if !ok {
			continue
		}
		sugared = sugared.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}
	return sugared
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.AsZap().Desugar()
}

func (imp *impl) Named(name string) *zap.SugaredLogger {
	return imp.AsZap().Named(name)
}

func (imp *impl) With(args ...interface{}) *zap.SugaredLogger {
	return imp.AsZap().With(args...)
}

func (imp *impl) WithOptions(opts ...zap.Option) *zap.SugaredLogger {
	return imp.AsZap().WithOptions(opts...)
}

func (imp *impl) enabled(level Level) bool {
	return GlobalLogLevel.Level() == zapcore.DebugLevel || level >= imp.level.Get()
}

func (imp *impl) newEntry(level Level, msg string) zapcore.Entry {
	now := time.Now()
	if imp.inUTC {
		now = now.UTC()
	}
	return zapcore.Entry{
		Level:      level.AsZap(),
		Time:       now,
		LoggerName: imp.name,
		Message:    msg,
		Caller:     caller(),
	}
}

// emit builds the message lazily so that disabled levels cost no formatting.
func (imp *impl) emit(level Level, msg func() string, fields []zapcore.Field) {
	if !imp.enabled(level) {
		return
	}
	entry := imp.newEntry(level, msg())
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// fieldsFromKeysAndValues pairs up alternating keys and values. A trailing key without a value is kept
// with an error in its place.
func fieldsFromKeysAndValues(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func sprint(args []interface{}) func() string {
	return func() string { return fmt.Sprint(args...) }
}

func sprintf(template string, args []interface{}) func() string {
	return func() string { return fmt.Sprintf(template, args...) }
}

func constant(msg string) func() string {
	return func() string { return msg }
}

func (imp *impl) Debug(args ...interface{}) {
	imp.emit(DEBUG, sprint(args), nil)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.emit(DEBUG, sprintf(template, args), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.emit(DEBUG, constant(msg), fieldsFromKeysAndValues(keysAndValues))
}

func (imp *impl) Info(args ...interface{}) {
	imp.emit(INFO, sprint(args), nil)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.emit(INFO, sprintf(template, args), nil)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.emit(INFO, constant(msg), fieldsFromKeysAndValues(keysAndValues))
}

func (imp *impl) Warn(args ...interface{}) {
	imp.emit(WARN, sprint(args), nil)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.emit(WARN, sprintf(template, args), nil)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.emit(WARN, constant(msg), fieldsFromKeysAndValues(keysAndValues))
}

func (imp *impl) Error(args ...interface{}) {
	imp.emit(ERROR, sprint(args), nil)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.emit(ERROR, sprintf(template, args), nil)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.emit(ERROR, constant(msg), fieldsFromKeysAndValues(keysAndValues))
}

// caller returns the location of the code that called the logger, e.g. "urdf/compiler.go:120".
func caller() zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	entryCaller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		entryCaller.Function = fn.Name()
	}
	return entryCaller
}
