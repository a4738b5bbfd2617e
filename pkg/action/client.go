package action

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/openmission/openmission/pkg/behavior"
)

// Server executes action goals. G is the goal type, F the feedback type and
// R the result type. Run blocks until the goal reaches a terminal state; it
// must honour ctx cancellation by returning ctx.Err(), and may invoke the
// feedback callback any number of times from its own goroutine before
// returning.
type Server[G, F, R any] interface {
	Run(ctx context.Context, goal G, feedback func(F)) (R, error)
}

// ServerFunc adapts a function to the Server interface.
type ServerFunc[G, F, R any] func(ctx context.Context, goal G, feedback func(F)) (R, error)

// Run implements Server.
func (f ServerFunc[G, F, R]) Run(ctx context.Context, goal G, feedback func(F)) (R, error) {
	return f(ctx, goal, feedback)
}

// Options configures a Client.
type Options[F any] struct {
	// Clock is the time source for the goal timeout. Defaults to the
	// system clock.
	Clock behavior.Clock

	// Timeout bounds the wait for a terminal result; zero means no
	// timeout. On expiry the goal is cancelled and Execute returns
	// StatusTimedOut.
	Timeout time.Duration

	// Feedback is invoked for every feedback message of the in-flight
	// goal. It runs on the server's goroutine and must be safe to call
	// concurrently with the behavior's progress readers; writing into the
	// behavior's progress snapshot satisfies that.
	Feedback func(F)
}

// Client sends goals to an action server and waits for terminal results.
// A client is a transient execution resource: create it in pre-execution,
// release it in post-execution, send exactly one goal per execution.
type Client[G, F, R any] struct {
	server   Server[G, F, R]
	clock    behavior.Clock
	timeout  time.Duration
	feedback func(F)

	mu        sync.Mutex
	cancel    context.CancelFunc
	result    R
	hasResult bool
	err       error
}

// NewClient creates a client for the given server.
func NewClient[G, F, R any](server Server[G, F, R], opts Options[F]) *Client[G, F, R] {
	clock := opts.Clock
	if clock == nil {
		clock = behavior.SystemClock()
	}
	return &Client[G, F, R]{
		server:   server,
		clock:    clock,
		timeout:  opts.Timeout,
		feedback: opts.Feedback,
	}
}

// Execute sends the goal and blocks until a terminal status. Exactly one
// status is returned per call. Cancel may be invoked concurrently; the
// server observes the cancellation cooperatively.
func (c *Client[G, F, R]) Execute(goal G) Status {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.hasResult = false
	c.err = nil
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel()
	}()

	type terminal struct {
		result R
		err    error
	}
	// Buffered so the server goroutine never leaks when Execute returns
	// early on timeout.
	done := make(chan terminal, 1)
	go func() {
		result, err := c.server.Run(ctx, goal, c.feedback)
		done <- terminal{result: result, err: err}
	}()

	var timeoutCh <-chan time.Time
	if c.timeout > 0 {
		timeoutCh = c.clock.After(c.timeout)
	}

	select {
	case t := <-done:
		if t.err != nil {
			if errors.Is(t.err, context.Canceled) || ctx.Err() != nil {
				return StatusCancelled
			}
			c.mu.Lock()
			c.err = t.err
			c.mu.Unlock()
			return StatusFaulted
		}
		c.mu.Lock()
		c.result = t.result
		c.hasResult = true
		c.mu.Unlock()
		return StatusSucceeded
	case <-timeoutCh:
		cancel()
		return StatusTimedOut
	}
}

// Cancel requests cancellation of the in-flight goal. Non-blocking: the
// terminal status still arrives through Execute on the execution thread.
// Cancelling when no goal is in flight is a no-op.
func (c *Client[G, F, R]) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Result returns the result of the last successful execution.
func (c *Client[G, F, R]) Result() (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.hasResult
}

// Err returns the server error of the last faulted execution, if any.
func (c *Client[G, F, R]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
