// Package action integrates leaf behaviors with external asynchronous
// actions. A leaf creates a Client during pre-execution, sends exactly one
// goal per execution, blocks until a terminal result, maps that result onto
// an outcome, and releases the client during post-execution.
package action

import (
	"github.com/openmission/openmission/pkg/behavior"
)

// Status is the terminal status of an action goal.
type Status string

const (
	// StatusSucceeded indicates the action completed its goal.
	StatusSucceeded Status = "succeeded"

	// StatusCancelled indicates the goal was cancelled, usually because the
	// owning behavior was preempted.
	StatusCancelled Status = "cancelled"

	// StatusFaulted indicates the action server reported an error.
	StatusFaulted Status = "faulted"

	// StatusTimedOut indicates no terminal result arrived within the
	// client's timeout. The goal was cancelled.
	StatusTimedOut Status = "timed_out"
)

// Outcome maps the action status deterministically onto the canonical
// behavior outcomes: succeeded is success, cancelled is preemption, faulted
// and timed out are failures.
func (s Status) Outcome() behavior.Outcome {
	switch s {
	case StatusSucceeded:
		return behavior.Success
	case StatusCancelled:
		return behavior.Preemption
	default:
		return behavior.Failure
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
