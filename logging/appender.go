package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the timestamp layout of console lines.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. It is the subset of zapcore.Core that loggers write through,
// so zap cores can be used as appenders.
type Appender interface {
	// Write submits a structured log entry.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync flushes buffered entries.
	Sync() error
}

// ConsoleAppender writes tab-delimited lines: time, level, logger name, caller, message and the
// fields as a JSON object.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns a ConsoleAppender writing to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns a ConsoleAppender writing to writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// Write prints one line for the entry. Fields that cannot be encoded are dropped from the line and
// their error returned.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	fmt.Fprintln(appender.Writer, line)
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		// e.g. "urdf/compiler.go:120"
		parts = append(parts, entry.Caller.TrimmedPath())
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}
	encoded, err := encodeFields(fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	return strings.Join(append(parts, encoded), "\t"), nil
}

// encodeFields renders fields as one JSON object, in order.
func encodeFields(fields []zapcore.Field) (string, error) {
	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := encoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return buf.String(), nil
}
