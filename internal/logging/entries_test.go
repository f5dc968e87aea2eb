package logging

import (
	"strings"
	"testing"
	"time"
)

func TestLogEntryString(t *testing.T) {
	e := LogEntry{
		Timestamp: time.Date(2026, 3, 1, 9, 30, 45, 0, time.Local),
		Level:     "WARN",
		Scope:     "catalog",
		Message:   "scan failed",
		Fields:    map[string]any{"path": "/repos", "attempt": 2},
	}

	got := e.String()
	want := "09:30:45 WARN [catalog] scan failed attempt=2 path=/repos"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLogEntryString_NoFields(t *testing.T) {
	e := LogEntry{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local),
		Level:     "INFO",
		Scope:     "app",
		Message:   "starting",
	}
	if got := e.String(); strings.HasSuffix(got, " ") {
		t.Errorf("String() has trailing space: %q", got)
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"fatal", "ERROR"},
		{"panic", "ERROR"},
		{"", "INFO"},
		{"verbose", "INFO"},
	}
	for _, tt := range tests {
		if got := normalizeLevel(tt.in); got != tt.want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
