// pattern: Functional Core

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogEntry is one structured record as the log panel consumes it.
// Level is one of DEBUG, INFO, WARN, ERROR.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Scope     string
	Message   string
	Fields    map[string]any
}

// String renders "15:04:05 LEVEL [scope] message k=v ..." with fields in
// key order so output is stable.
func (e LogEntry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Timestamp.Format("15:04:05"))
	sb.WriteByte(' ')
	sb.WriteString(e.Level)
	sb.WriteString(" [")
	sb.WriteString(e.Scope)
	sb.WriteString("] ")
	sb.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
		}
	}
	return sb.String()
}

// normalizeLevel maps zap's lowercase level names onto the display names
// the log panel filters by. Anything unrecognized counts as INFO.
func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error", "dpanic", "panic", "fatal":
		return "ERROR"
	default:
		return "INFO"
	}
}
