// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger whose methods do nothing. Handy where a
// component requires a logger but the test does not care about output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a channel-only Manager stand-in for tests: same For()
// surface, no file, everything at debug level.
type TestLogManager struct {
	sink    *ChannelSink
	base    *zap.Logger
	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager returns a manager buffering up to bufferSize entries.
func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		sink:    sink,
		base:    zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For mirrors Manager.For.
func (m *TestLogManager) For(scope string) *ScopedLogger {
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
	l = newScopedLogger(m.base.Named(scope), zapcore.DebugLevel, scope)
	m.loggers[scope] = l
	return l
}

// Channel returns the receive side for asserting on emitted entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Close closes the entry channel.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
