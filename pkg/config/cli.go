package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CLI is the missionctl tool configuration, loaded from a TOML file. All
// fields have working defaults so the file is optional.
type CLI struct {
	// StorePath is the SQLite database recording runs and reports. Empty
	// disables persistence.
	StorePath string `toml:"store_path"`

	// LogLevel is the minimum log level (trace, debug, info, warn, error).
	LogLevel string `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	// LogFormat selects console or json output.
	LogFormat string `toml:"log_format" validate:"omitempty,oneof=console json"`

	// MetricsListen is the Prometheus listen address; empty disables the
	// metrics endpoint.
	MetricsListen string `toml:"metrics_listen"`

	// TracingEnabled turns on stdout trace export for debugging runs.
	TracingEnabled bool `toml:"tracing_enabled"`
}

// DefaultCLI returns the tool configuration used when no file is present.
func DefaultCLI() *CLI {
	return &CLI{
		StorePath: defaultStorePath(),
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadCLI reads the tool configuration from path, falling back to defaults
// when the file does not exist. Explicit paths that fail to parse are
// reported rather than silently defaulted.
func LoadCLI(path string) (*CLI, error) {
	cfg := DefaultCLI()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultCLIPath returns the conventional location of the tool
// configuration file.
func DefaultCLIPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "missionctl", "config.toml")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "missionctl.db"
	}
	return filepath.Join(home, ".local", "share", "missionctl", "runs.db")
}
