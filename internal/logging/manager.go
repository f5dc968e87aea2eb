// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the log manager. FilePath is required; everything else
// falls back to a sane default when zero.
type Config struct {
	FilePath       string
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Level          string // debug, info, warn, error
	ChannelBufSize int
}

// LoggerProvider hands out scoped loggers. Satisfied by Manager and by
// TestLogManager so constructors can take either.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// Manager tees every record to a rotated file and to the entry channel
// the TUI log panel reads. Scoped loggers are cached per scope name.
type Manager struct {
	base    *zap.Logger
	sink    *ChannelSink
	file    *lumberjack.Logger
	level   zapcore.Level
	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewManager builds the dual-output manager and creates the log directory
// if needed.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: FilePath is required")
	}
	if cfg.ChannelBufSize <= 0 {
		cfg.ChannelBufSize = 1000
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 7
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	enc := encoderConfig()
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(file), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), level),
	)

	return &Manager{
		base:    zap.New(core),
		sink:    sink,
		file:    file,
		level:   level,
		loggers: make(map[string]*ScopedLogger),
	}, nil
}

// encoderConfig is shared with TestLogManager so decodeEntry sees the
// same key names either way.
func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.EpochTimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	return enc
}

// For returns the cached logger for a scope, creating it on first use.
// Scope names are dotted paths like "surface.p1" or "catalog".
func (m *Manager) For(scope string) *ScopedLogger {
	m.mu.RLock()
	l, ok := m.loggers[scope]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[scope]; ok {
		return l
	}
	l = newScopedLogger(m.base.Named(scope), m.level, scope)
	m.loggers[scope] = l
	return l
}

// Entries returns the channel the TUI log panel consumes.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered records to the file.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close syncs and releases the file and the entry channel.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}
