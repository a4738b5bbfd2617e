package behaviors

import (
	"time"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/report"
)

// TypeWait is the registered type of the Wait behavior.
const TypeWait behavior.Type = "wait"

// progressTick is the granularity of Wait progress updates.
const progressTick = 100 * time.Millisecond

// Wait pauses the mission for a configured duration. It observes preemption
// between ticks and reports elapsed time as progress.
type Wait struct {
	behavior.Leaf

	duration time.Duration
}

// NewWait constructs an unbound Wait behavior.
func NewWait() behavior.Behavior {
	return &Wait{}
}

// SetDuration sets the wait duration.
func (w *Wait) SetDuration(d time.Duration) {
	w.duration = d
}

// Duration returns the configured wait duration, zero when unset.
func (w *Wait) Duration() time.Duration {
	return w.duration
}

// MarshalSettings stores the duration so the field appears in the mission
// editor even when unset.
func (w *Wait) MarshalSettings(settings *behavior.Settings) {
	settings.Add(behavior.DurationParameter("duration", w.duration))
}

// UnmarshalSettings applies the duration if present.
func (w *Wait) UnmarshalSettings(settings behavior.Settings) error {
	if p, ok := settings.Get("duration"); ok {
		d, err := p.AsDuration()
		if err != nil {
			return err
		}
		w.duration = d
	}
	return nil
}

// CheckConsistency requires the duration to be configured before execution.
func (w *Wait) CheckConsistency() behavior.Inconsistencies {
	var ics behavior.Inconsistencies
	if w.duration <= 0 {
		ics.Addf(w.NestedName(), "the duration has not been set")
	}
	return ics
}

// RunMidExecution waits out the configured duration in small slices so a
// preemption request is observed promptly. Progress accumulates the waited
// time, which keeps it deterministic under a fake clock.
func (w *Wait) RunMidExecution() behavior.Outcome {
	clock := w.Context().Clock()
	total := w.duration

	w.SetProgress(behavior.Progress{Goal: total.Seconds(), Unit: "s"})

	var waited time.Duration
	for waited < total {
		step := progressTick
		if remaining := total - waited; remaining < step {
			step = remaining
		}
		select {
		case <-w.PreemptionSignal():
			w.Reportf(report.LevelDebug, "wait preempted after %s of %s", waited, total)
			return behavior.Preemption
		case <-clock.After(step):
		}
		waited += step
		w.SetProgress(behavior.Progress{
			Goal: total.Seconds(),
			Done: waited.Seconds(),
			Unit: "s",
		})
	}

	w.Reportf(report.LevelDebug, "waited %s", total)
	return behavior.Success
}
