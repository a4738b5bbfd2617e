package behavior

import (
	"time"

	"github.com/openmission/openmission/pkg/report"
	"github.com/openmission/openmission/pkg/telemetry"
)

// Clock is the time source injected into behaviors. Behaviors never read the
// wall clock directly; action timeouts, waits and report timestamps all go
// through the mission clock so tests can substitute a fake.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel delivering the time after d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// systemClock is the real-time Clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns a Clock backed by the system time.
func SystemClock() Clock {
	return systemClock{}
}

// Context is the bag of shared collaborators injected into every behavior of
// a composite tree. It is shared by reference across the whole tree and
// outlives every behavior it is injected into; no single behavior owns it.
type Context struct {
	clock    Clock
	reporter report.Sink
	logger   *telemetry.Logger
}

// NewContext creates a context. Nil collaborators are replaced with safe
// defaults: the system clock, a discarding report sink and a default logger.
func NewContext(clock Clock, reporter report.Sink, logger *telemetry.Logger) *Context {
	if clock == nil {
		clock = SystemClock()
	}
	if reporter == nil {
		reporter = report.Discard()
	}
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Context{
		clock:    clock,
		reporter: reporter,
		logger:   logger,
	}
}

// Clock returns the mission time source.
func (c *Context) Clock() Clock { return c.clock }

// Reporter returns the report sink.
func (c *Context) Reporter() report.Sink { return c.reporter }

// Logger returns the structured logger.
func (c *Context) Logger() *telemetry.Logger { return c.logger }
