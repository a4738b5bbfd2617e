package report

import (
	"sync"

	"github.com/rs/zerolog"
)

// MemorySink buffers entries in memory. It is used by the mission runner to
// retain the report of the current run and by tests to assert on emitted
// entries.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Add implements Sink.
func (m *MemorySink) Add(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

// Entries returns a copy of all entries added so far, in insertion order.
func (m *MemorySink) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries added so far.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reset discards all buffered entries.
func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

// LoggerSink forwards report entries to a zerolog logger, mapping report
// levels onto log levels.
type LoggerSink struct {
	log zerolog.Logger
}

// NewLoggerSink creates a sink writing to the given logger.
func NewLoggerSink(log zerolog.Logger) *LoggerSink {
	return &LoggerSink{log: log}
}

// Add implements Sink.
func (s *LoggerSink) Add(entry Entry) {
	var ev *zerolog.Event
	switch entry.Level {
	case LevelDebug:
		ev = s.log.Debug()
	case LevelWarning:
		ev = s.log.Warn()
	case LevelError:
		ev = s.log.Error()
	default:
		ev = s.log.Info()
	}
	ev = ev.Str("behavior", entry.Behavior).Time("reported_at", entry.Time)
	if entry.Value != nil {
		ev = ev.Float64("value", *entry.Value)
		if entry.Unit != "" {
			ev = ev.Str("unit", entry.Unit)
		}
	}
	ev.Msg(entry.Message)
}
