package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface used across netcanvas
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// Entry is one JSON log line
type Entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// JSONLogger writes one JSON object per line. Child loggers created with
// With share the parent's writer lock and level.
type JSONLogger struct {
	out    *sink
	fields []Field
}

type sink struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	now    func() time.Time
}

// NewJSONLogger creates a logger writing to w at the given minimum level
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{out: &sink{writer: w, level: level, now: time.Now}}
}

// NewDefaultLogger writes to stdout at the level named by NETCANVAS_LOG_LEVEL
func NewDefaultLogger() *JSONLogger {
	return NewJSONLogger(os.Stdout, ParseLevel(os.Getenv("NETCANVAS_LOG_LEVEL")))
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if level < l.out.level {
		return
	}

	entry := Entry{
		Time:    l.out.now().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out.writer, "{\"level\":\"ERROR\",\"msg\":\"unencodable log entry\",\"error\":%q}\n", err.Error())
		return
	}
	data = append(data, '\n')
	l.out.writer.Write(data)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a child logger with fields pre-set
func (l *JSONLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &JSONLogger{out: l.out, fields: merged}
}

// SetLevel changes the minimum level for this logger and all of its children
func (l *JSONLogger) SetLevel(level Level) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.level = level
}

func (l *JSONLogger) GetLevel() Level {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.level
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return InfoLevel }

// NewNopLogger returns a logger that discards all output
func NewNopLogger() Logger {
	return NopLogger{}
}

// Timer logs the duration of an operation when it ends
type Timer struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *Timer {
	return &Timer{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs at info level with the elapsed latency and any extra fields
func (t *Timer) End(extra ...Field) {
	t.logger.Info(t.msg, t.with(extra, Latency(t.Elapsed()))...)
}

// EndError logs at error level with the elapsed latency and the error
func (t *Timer) EndError(err error, extra ...Field) {
	t.logger.Error(t.msg, t.with(extra, Latency(t.Elapsed()), Error(err))...)
}

func (t *Timer) with(extra []Field, tail ...Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(extra)+len(tail))
	out = append(out, t.fields...)
	out = append(out, extra...)
	return append(out, tail...)
}
