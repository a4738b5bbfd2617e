// Package stores provides the persistence layer for mission runs.
//
// The SQLite-backed store records one row per run (mission, behavior type,
// status, terminal outcome, settings snapshot) and an append-only table of
// operator report entries keyed by run. Schema changes ship as embedded
// migrations applied on startup.
//
// ReportSink bridges the in-memory report stream into the store so that a
// run's audit trail survives the process.
package stores
