package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Logger defines a minimal logging contract compatible with go-logger.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger allows attaching structured fields to a logger.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// Level orders log severities.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "LEVEL(" + fmt.Sprint(int(l)) + ")"
}

// BasicLogger writes key=value lines to Writer. Entries below MinLevel are
// dropped.
type BasicLogger struct {
	Writer   io.Writer
	MinLevel Level
	fields   map[string]any
	mu       *sync.Mutex
}

// Default returns the shared logger used when none is configured.
func Default() Logger {
	return defaultLogger
}

// NewBasicLogger constructs a BasicLogger writing to stderr at info level.
func NewBasicLogger() *BasicLogger {
	return &BasicLogger{
		Writer:   os.Stderr,
		MinLevel: LevelInfo,
		mu:       &sync.Mutex{},
	}
}

// WithFields implements FieldsLogger.
func (l *BasicLogger) WithFields(fields map[string]any) Logger {
	if l == nil {
		l = NewBasicLogger()
	}
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &BasicLogger{
		Writer:   l.Writer,
		MinLevel: l.MinLevel,
		fields:   merged,
		mu:       l.lock(),
	}
}

// WithContext implements Logger.
func (l *BasicLogger) WithContext(context.Context) Logger {
	return l
}

func (l *BasicLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }
func (l *BasicLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *BasicLogger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *BasicLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *BasicLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }
func (l *BasicLogger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args...) }

func (l *BasicLogger) log(level Level, msg string, args ...any) {
	if l == nil || level < l.MinLevel {
		return
	}
	out := l.Writer
	if out == nil {
		out = os.Stderr
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	writePairs(&b, sortedFieldArgs(l.fields))
	writePairs(&b, args)
	b.WriteString("\n")

	mu := l.lock()
	mu.Lock()
	defer mu.Unlock()
	_, _ = io.WriteString(out, b.String())
}

func (l *BasicLogger) lock() *sync.Mutex {
	if l.mu == nil {
		l.mu = &sync.Mutex{}
	}
	return l.mu
}

func writePairs(b *strings.Builder, args []any) {
	for i := 0; i < len(args); i += 2 {
		b.WriteString(" ")
		if i+1 >= len(args) {
			fmt.Fprintf(b, "%v", args[i])
			return
		}
		fmt.Fprintf(b, "%v=%v", args[i], args[i+1])
	}
}

func sortedFieldArgs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Trace(string, ...any)               {}
func (nopLogger) Debug(string, ...any)               {}
func (nopLogger) Info(string, ...any)                {}
func (nopLogger) Warn(string, ...any)                {}
func (nopLogger) Error(string, ...any)               {}
func (nopLogger) Fatal(string, ...any)               {}
func (n nopLogger) WithContext(context.Context) Logger { return n }

var defaultLogger Logger = NewBasicLogger()

var (
	_ Logger       = (*BasicLogger)(nil)
	_ FieldsLogger = (*BasicLogger)(nil)
	_ Logger       = nopLogger{}
)
