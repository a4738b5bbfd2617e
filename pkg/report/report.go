package report

import (
	"time"
)

// Level is the severity level of a report entry.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entry is a single operator-visible report entry emitted by a behavior.
// Entries form the audit trail of a mission run.
type Entry struct {
	// Time is when the entry was created, taken from the mission clock.
	Time time.Time `json:"time"`

	// Behavior is the nested name of the emitting behavior within its
	// composite tree (e.g. "mission.approach.dock").
	Behavior string `json:"behavior"`

	// Level is the severity of the entry.
	Level Level `json:"level"`

	// Message is the human-readable entry text.
	Message string `json:"message"`

	// Value optionally carries a numeric measurement associated with the
	// entry (e.g. a distance or a computed result).
	Value *float64 `json:"value,omitempty"`

	// Unit is the unit of Value, empty when Value is unitless or absent.
	Unit string `json:"unit,omitempty"`
}

// NewEntry creates a report entry for the named behavior.
func NewEntry(behavior string, level Level, message string) Entry {
	return Entry{
		Behavior: behavior,
		Level:    level,
		Message:  message,
	}
}

// WithValue returns a copy of the entry carrying a numeric value and unit.
func (e Entry) WithValue(value float64, unit string) Entry {
	e.Value = &value
	e.Unit = unit
	return e
}

// Sink accepts report entries. Implementations must be safe for use from
// multiple goroutines: the execution thread and operator-facing threads may
// report concurrently.
type Sink interface {
	Add(entry Entry)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(entry Entry)

// Add implements Sink.
func (f SinkFunc) Add(entry Entry) { f(entry) }

// Discard returns a sink that drops every entry.
func Discard() Sink {
	return SinkFunc(func(Entry) {})
}

// Fanout returns a sink that forwards every entry to all given sinks in order.
func Fanout(sinks ...Sink) Sink {
	return SinkFunc(func(entry Entry) {
		for _, s := range sinks {
			s.Add(entry)
		}
	})
}
