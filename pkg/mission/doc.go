// Package mission orchestrates mission runs: it constructs the root
// behavior from a mission definition, loads its settings, refuses to start
// inconsistent configurations, and drives the execution on a dedicated
// goroutine while exposing preemption and progress to operator-facing
// callers.
//
// Each run gets its own report pipeline (logger, metrics, optional
// persistent store) and its own trace span, all keyed by a generated run ID.
package mission
