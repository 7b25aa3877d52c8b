// Package logging provides the leveled logger used across the module: a
// printf-style facade over a zap core whose level can change at runtime.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a zap level. Only the four below are produced by ParseLevel.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// ParseLevel reads a level name case-insensitively. "warning" is accepted
// for warn; anything unknown is info.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn
	}
	var l Level
	if err := l.UnmarshalText([]byte(s)); err != nil || l < LevelDebug || l > LevelError {
		return LevelInfo
	}
	return l
}

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures NewLogger. The zero value logs info and above to
// stderr in console format.
type Options struct {
	Level  Level
	Output io.Writer
	Name   string
	Format string
}

// Logger writes leveled messages. Children made with With share the
// level of their parent.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	MessageKey:     "msg",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeName:     zapcore.FullNameEncoder,
}

// NewLogger builds a logger from opts.
func NewLogger(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	enc := zapcore.NewConsoleEncoder(encoderConfig)
	if opts.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encoderConfig)
	}

	level := zap.NewAtomicLevelAt(opts.Level)
	z := zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), level))
	if opts.Name != "" {
		z = z.Named(opts.Name)
	}
	return &Logger{sugar: z.Sugar(), level: level}
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), level: l.level}
}

// WithField is With for a single pair.
func (l *Logger) WithField(key string, value any) *Logger { return l.With(key, value) }

// WithComponent tags entries with the subsystem that wrote them.
func (l *Logger) WithComponent(name string) *Logger { return l.With("component", name) }

// SetLevel changes the level for l and every logger derived from it.
func (l *Logger) SetLevel(level Level) { l.level.SetLevel(level) }

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool { return l.level.Enabled(level) }

func (l *Logger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
