// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ChannelSink is a zapcore.WriteSyncer that decodes each JSON record and
// delivers it on a bounded channel. Delivery never blocks a logger: when
// the buffer is full the oldest entry is evicted to make room.
type ChannelSink struct {
	mu      sync.Mutex
	entries chan LogEntry
	closed  bool
}

// NewChannelSink returns a sink buffering up to bufferSize entries.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, bufferSize)}
}

// Write decodes one zap JSON line and queues it. Undecodable input is
// swallowed so a malformed record can never wedge the logger.
func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := decodeEntry(p)
	if !ok {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("channel sink closed")
	}
	if cap(s.entries) == 0 {
		return len(p), nil
	}

	for {
		select {
		case s.entries <- entry:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries: // evict oldest
		default:
		}
	}
}

// Sync satisfies zapcore.WriteSyncer.
func (s *ChannelSink) Sync() error { return nil }

// Close closes the entry channel. Idempotent.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

// Entries returns the receive side of the sink.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// decodeEntry maps one zap production-encoder JSON record onto a LogEntry.
// Reserved keys (ts, level, logger, msg, caller, stacktrace) are consumed;
// everything else lands in Fields.
func decodeEntry(p []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    make(map[string]any),
	}
	if ts, ok := raw["ts"].(float64); ok {
		sec := int64(ts)
		entry.Timestamp = time.Unix(sec, int64((ts-float64(sec))*1e9))
	}
	if lvl, ok := raw["level"].(string); ok {
		entry.Level = normalizeLevel(lvl)
	}
	if scope, ok := raw["logger"].(string); ok {
		entry.Scope = scope
	}
	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}
	for _, k := range []string{"ts", "level", "logger", "msg", "caller", "stacktrace"} {
		delete(raw, k)
	}
	for k, v := range raw {
		entry.Fields[k] = v
	}
	return entry, true
}
