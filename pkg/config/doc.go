// Package config loads and validates the two configuration surfaces of the
// engine: mission definition files (YAML, describing which behavior to run
// and with what settings) and the missionctl tool configuration (TOML,
// describing storage and telemetry defaults).
//
// Mission files are forward compatible in both directions: unknown top-level
// fields are ignored on load, and behaviors ignore settings parameters they
// do not recognize.
package config
