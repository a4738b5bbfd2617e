package behaviors

import (
	"context"
	"sync"
	"time"

	"github.com/openmission/openmission/pkg/action"
	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/report"
)

// TypeCountTo is the registered type of the CountTo behavior.
const TypeCountTo behavior.Type = "count_to"

// defaultCountInterval is the step interval of the built-in count server.
const defaultCountInterval = 100 * time.Millisecond

// CountTo delegates its work to an asynchronous counting action: it sends
// one goal per execution, forwards action feedback into its progress
// snapshot, and maps the terminal action status onto an outcome. It is the
// reference pattern for action-backed leaf behaviors.
type CountTo struct {
	behavior.Leaf

	target   int
	interval time.Duration
	timeout  time.Duration

	server action.Server[int, int, int]

	// clientMu guards the client handle, which the preemption thread reads
	// while pre/post-execution create and release it.
	clientMu sync.Mutex
	client   *action.Client[int, int, int]
}

// NewCountTo constructs an unbound CountTo behavior.
func NewCountTo() behavior.Behavior {
	return &CountTo{interval: defaultCountInterval}
}

// SetTarget sets the number to count to.
func (c *CountTo) SetTarget(target int) {
	c.target = target
}

// Target returns the configured target, zero when unset.
func (c *CountTo) Target() int {
	return c.target
}

// SetTimeout bounds the wait for the action result; zero disables it.
// A timed-out action resolves to outcome failure.
func (c *CountTo) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetServer replaces the counting action server. The default server counts
// in-process on the mission clock; tests and integrations substitute their
// own.
func (c *CountTo) SetServer(server action.Server[int, int, int]) {
	c.server = server
}

// MarshalSettings stores the editable parameters.
func (c *CountTo) MarshalSettings(settings *behavior.Settings) {
	settings.Add(behavior.IntParameter("target", c.target))
	settings.Add(behavior.DurationParameter("interval", c.interval))
	settings.Add(behavior.DurationParameter("timeout", c.timeout))
}

// UnmarshalSettings applies the parameters that are present.
func (c *CountTo) UnmarshalSettings(settings behavior.Settings) error {
	if p, ok := settings.Get("target"); ok {
		target, err := p.AsInt()
		if err != nil {
			return err
		}
		c.target = target
	}
	if p, ok := settings.Get("interval"); ok {
		interval, err := p.AsDuration()
		if err != nil {
			return err
		}
		c.interval = interval
	}
	if p, ok := settings.Get("timeout"); ok {
		timeout, err := p.AsDuration()
		if err != nil {
			return err
		}
		c.timeout = timeout
	}
	return nil
}

// CheckConsistency requires the target to be configured before execution.
func (c *CountTo) CheckConsistency() behavior.Inconsistencies {
	var ics behavior.Inconsistencies
	if c.target <= 0 {
		ics.Addf(c.NestedName(), "the target has not been set")
	}
	return ics
}

// RunPreExecution creates the action client, a transient execution
// resource, and wires its feedback into the progress snapshot.
func (c *CountTo) RunPreExecution() error {
	goal := float64(c.target)
	client := action.NewClient[int, int, int](c.serverOrDefault(), action.Options[int]{
		Clock:   c.Context().Clock(),
		Timeout: c.timeout,
		Feedback: func(n int) {
			c.SetProgress(behavior.Progress{Goal: goal, Done: float64(n), Unit: "counts"})
		},
	})
	c.clientMu.Lock()
	c.client = client
	c.clientMu.Unlock()
	return nil
}

// RunMidExecution sends the goal and blocks until the terminal action
// result, mapping it deterministically onto an outcome.
func (c *CountTo) RunMidExecution() behavior.Outcome {
	if c.target <= 0 {
		c.Report(report.LevelError, "failed to count: the target has not been set")
		return behavior.Failure
	}

	// A request raised before the client existed could not cancel a goal.
	if c.PreemptionRequested() {
		return behavior.Preemption
	}

	c.Reportf(report.LevelDebug, "counting to %d ...", c.target)

	c.clientMu.Lock()
	client := c.client
	c.clientMu.Unlock()

	status := client.Execute(c.target)
	switch status {
	case action.StatusSucceeded:
		result, _ := client.Result()
		entry := report.NewEntry(c.NestedName(), report.LevelInfo, "counting finished").
			WithValue(float64(result), "counts")
		entry.Time = c.Context().Clock().Now()
		c.Context().Reporter().Add(entry)
		return behavior.Success
	case action.StatusCancelled:
		c.Reportf(report.LevelDebug, "counting to %d was cancelled", c.target)
		return behavior.Preemption
	default:
		c.Reportf(report.LevelError, "failed to count to %d: %s", c.target, status)
		return behavior.Failure
	}
}

// RunPostExecution releases the action client unconditionally.
func (c *CountTo) RunPostExecution() {
	c.clientMu.Lock()
	c.client = nil
	c.clientMu.Unlock()
}

// OnPreemptionRequest cancels the in-flight goal. Non-blocking: the
// preemption outcome surfaces later, on the execution thread.
func (c *CountTo) OnPreemptionRequest() {
	c.clientMu.Lock()
	client := c.client
	c.clientMu.Unlock()
	if client != nil {
		client.Cancel()
	}
}

func (c *CountTo) serverOrDefault() action.Server[int, int, int] {
	if c.server != nil {
		return c.server
	}
	clock := c.Context().Clock()
	interval := c.interval
	if interval <= 0 {
		interval = defaultCountInterval
	}
	return action.ServerFunc[int, int, int](func(ctx context.Context, goal int, feedback func(int)) (int, error) {
		for n := 1; n <= goal; n++ {
			select {
			case <-ctx.Done():
				return n - 1, ctx.Err()
			case <-clock.After(interval):
			}
			if feedback != nil {
				feedback(n)
			}
		}
		return goal, nil
	})
}
