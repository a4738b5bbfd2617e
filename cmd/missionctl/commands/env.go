package commands

import (
	"context"
	"fmt"

	"github.com/openmission/openmission/pkg/behaviors"
	"github.com/openmission/openmission/pkg/config"
	"github.com/openmission/openmission/pkg/mission"
	"github.com/openmission/openmission/pkg/stores"
	"github.com/openmission/openmission/pkg/telemetry"
)

// environment bundles the collaborators every command needs: resolved
// configuration, telemetry, the optional run store and a mission runner
// with the built-in behavior library registered.
type environment struct {
	cfg    *config.CLI
	tel    *telemetry.Telemetry
	store  stores.Store
	runner *mission.Runner
}

// newEnvironment wires the command environment from flags and config file.
// withStore controls whether the run database is opened; read-only commands
// that never touch history skip it.
func newEnvironment(ctx context.Context, withStore bool) (*environment, error) {
	path := configPath
	if path == "" {
		path = config.DefaultCLIPath()
	}
	cfg, err := config.LoadCLI(path)
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if noStore {
		cfg.StorePath = ""
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	telCfg := telemetry.DefaultConfig()
	telCfg.Logging.Level = cfg.LogLevel
	telCfg.Logging.Format = cfg.LogFormat
	telCfg.Tracing.Enabled = cfg.TracingEnabled
	if cfg.MetricsListen != "" {
		telCfg.Metrics.Enabled = true
		telCfg.Metrics.ListenAddress = cfg.MetricsListen
	}
	tel, err := telemetry.NewTelemetry(telCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	env := &environment{cfg: cfg, tel: tel}

	if withStore && cfg.StorePath != "" {
		store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.StorePath})
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		env.store = store
	}

	env.runner = mission.NewRunner(mission.RunnerOptions{
		Telemetry:  tel,
		Store:      env.store,
		Registrars: []mission.Registrar{behaviors.Register},
	})

	return env, nil
}

// Close releases the environment's resources.
func (e *environment) Close(ctx context.Context) {
	if e.store != nil {
		_ = e.store.Close()
	}
	if e.tel != nil {
		_ = e.tel.Shutdown(ctx)
	}
}
