package mission

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/config"
	"github.com/openmission/openmission/pkg/stores"
	"github.com/openmission/openmission/pkg/telemetry"
)

// Execution tracks one running mission. All methods are safe to call from
// any goroutine while the run proceeds on its own.
type Execution struct {
	// ID is the generated run ID, also the key of the persisted run record.
	ID string

	// Mission is the mission name from the definition.
	Mission string

	runner *Runner
	b      behavior.Behavior
	done   chan struct{}

	mu      sync.Mutex
	outcome behavior.Outcome
	ended   bool
}

// run drives the behavior to its terminal outcome and finalizes telemetry
// and persistence. It owns the execution thread.
func (e *Execution) run(def *config.Mission, span trace.Span, startedAt time.Time, storeSink *stores.ReportSink, logger *telemetry.Logger) {
	outcome := e.b.Execute()
	duration := e.runner.clock.Now().Sub(startedAt)

	e.mu.Lock()
	e.outcome = outcome
	e.ended = true
	e.mu.Unlock()

	logger.Infof("mission finished with outcome %s after %s", outcome, duration)

	if span != nil {
		telemetry.RecordOutcome(span, string(outcome))
		span.End()
	}
	e.runner.finalizeRun(e.ID, outcome, duration, def.Name, logger)
	if storeSink != nil {
		storeSink.Close()
	}
	close(e.done)
}

// Done returns a channel closed when the run reaches its terminal outcome.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the run finishes and returns its terminal outcome.
func (e *Execution) Wait() behavior.Outcome {
	<-e.done
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// Outcome returns the terminal outcome and whether the run has finished.
func (e *Execution) Outcome() (behavior.Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome, e.ended
}

// Preempt requests cooperative preemption of the run. It only signals; the
// run finishes later, on its execution thread, normally with the preemption
// outcome.
func (e *Execution) Preempt() {
	if m := e.runner.metrics(); m != nil {
		m.RecordPreemptionRequest()
	}
	e.b.RequestPreemption()
}

// Progress returns the latest progress snapshot of the root behavior.
func (e *Execution) Progress() behavior.Progress {
	return e.b.Progress()
}

// Behavior exposes the root behavior, e.g. for typed child access in tests
// and tooling.
func (e *Execution) Behavior() behavior.Behavior {
	return e.b
}
