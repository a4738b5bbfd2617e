// Package behavior implements the hierarchical state-machine engine that
// composes and executes mission behaviors.
//
// Atomic leaf behaviors embed Leaf and implement the hook interfaces of the
// execution protocol (RunPreExecution, RunMidExecution, RunPostExecution,
// OnPreemptionRequest). Composite behaviors embed Machine, which owns named
// children and a per-child transition table and reduces child outcomes to
// its own outcome by walking the table to a terminal entry.
//
// Execution is synchronous: Execute returns exactly one Outcome per call.
// Cancellation is cooperative: RequestPreemption only signals, the running
// behavior observes the signal and returns the Preemption outcome on the
// execution thread. Progress queries are safe concurrently with execution;
// snapshots are replaced whole, so readers never observe torn values.
//
// Behaviors are constructed through a Factory keyed by type name and are
// fully buildable and validatable without being executed, which lets
// external editing tools construct, inspect and save them. Configuration
// travels as Settings, an ordered sequence of tagged parameters with a
// save/load round-trip guarantee.
package behavior
