// Package telemetry provides observability instrumentation for the mission
// engine: structured logging (zerolog), distributed tracing (OpenTelemetry)
// and metrics (Prometheus).
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "openmission"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// The logger provides component-specific child loggers with automatic
// context propagation:
//
//	logger := tel.Logger.NewComponentLogger("mission")
//	logger = logger.WithRunID(runID).WithBehavior("mission.approach.dock")
//	logger.Info("behavior started")
//
// Spans cover whole mission runs and individual behavior executions:
//
//	ctx, span := tel.Tracer.StartMissionSpan(ctx, runID, missionName)
//	defer span.End()
//
// Metrics track started/completed missions by outcome, per-type behavior
// executions, preemption requests and emitted report entries. The report
// sink, by contrast, is not telemetry: it is the operator-visible audit
// trail of a run and lives in pkg/report.
package telemetry
