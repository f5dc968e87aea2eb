// pattern: Imperative Shell

package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ScopedLogger is what For() hands out. The slog front end carries the
// key-value call convention every package uses; a nil inner logger makes
// every method a no-op, which is what NopLogger relies on.
type ScopedLogger struct {
	slog  *slog.Logger
	zap   *zap.Logger
	scope string
}

func newScopedLogger(zl *zap.Logger, level zapcore.Level, scope string) *ScopedLogger {
	return &ScopedLogger{
		slog:  slog.New(&slogBridge{zap: zl, level: level}),
		zap:   zl,
		scope: scope,
	}
}

func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

func (l *ScopedLogger) Info(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

func (l *ScopedLogger) Error(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a logger carrying extra key-value pairs on every record.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), zap: l.zap, scope: l.scope}
}

// Scope returns the scope name this logger was created under.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// slogBridge adapts slog records onto a named zap logger so both call
// styles land in the same cores.
type slogBridge struct {
	zap   *zap.Logger
	level zapcore.Level
	attrs []slog.Attr
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return toZapLevel(level) >= b.level
}

func (b *slogBridge) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, r.NumAttrs()+len(b.attrs))
	for _, a := range b.attrs {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		b.zap.Error(r.Message, fields...)
	case r.Level >= slog.LevelWarn:
		b.zap.Warn(r.Message, fields...)
	case r.Level >= slog.LevelInfo:
		b.zap.Info(r.Message, fields...)
	default:
		b.zap.Debug(r.Message, fields...)
	}
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	merged = append(merged, b.attrs...)
	merged = append(merged, attrs...)
	return &slogBridge{zap: b.zap, level: b.level, attrs: merged}
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	return &slogBridge{zap: b.zap.Named(name), level: b.level, attrs: b.attrs}
}

func toZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
