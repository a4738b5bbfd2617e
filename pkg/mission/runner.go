package mission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/config"
	"github.com/openmission/openmission/pkg/report"
	"github.com/openmission/openmission/pkg/stores"
	"github.com/openmission/openmission/pkg/telemetry"
)

// Registrar adds behavior types to a factory. Runs get a fresh factory
// each, so registrars must be idempotent across factories.
type Registrar func(*behavior.Factory) error

// RunnerOptions configures a Runner. Zero values fall back to working
// defaults: system clock, discarding report sink, no persistence.
type RunnerOptions struct {
	// Telemetry supplies logging, metrics and tracing. Nil disables all
	// three.
	Telemetry *telemetry.Telemetry

	// Store persists run records and report entries. Nil disables
	// persistence.
	Store stores.Store

	// Sink receives every report entry of every run, in addition to the
	// per-run pipeline. Nil defaults to a logger-backed sink when telemetry
	// is present, otherwise discard.
	Sink report.Sink

	// Clock drives behavior timing. Nil defaults to the system clock; tests
	// substitute their own.
	Clock behavior.Clock

	// Registrars populate the per-run behavior factory.
	Registrars []Registrar
}

// Runner starts and supervises mission runs.
type Runner struct {
	tel        *telemetry.Telemetry
	store      stores.Store
	sink       report.Sink
	clock      behavior.Clock
	registrars []Registrar
}

// NewRunner creates a runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		tel:        opts.Telemetry,
		store:      opts.Store,
		sink:       opts.Sink,
		clock:      opts.Clock,
		registrars: opts.Registrars,
	}
	if r.clock == nil {
		r.clock = behavior.SystemClock()
	}
	if r.sink == nil {
		if r.tel != nil {
			r.sink = report.NewLoggerSink(r.tel.Logger.Zerolog())
		} else {
			r.sink = report.Discard()
		}
	}
	return r
}

// Build constructs the root behavior of a mission definition with its
// settings loaded, without executing it. Editing and validation tooling use
// it to inspect missions safely.
func (r *Runner) Build(def *config.Mission) (behavior.Behavior, error) {
	return r.build(def, r.newFactory(report.Discard(), r.logger()))
}

// Validate builds the mission's behavior and returns its configuration
// inconsistencies. An empty result means the mission is runnable.
func (r *Runner) Validate(def *config.Mission) (behavior.Inconsistencies, error) {
	b, err := r.Build(def)
	if err != nil {
		return nil, err
	}
	return b.Validate(), nil
}

// Start launches a mission run. It fails without executing anything when the
// behavior cannot be constructed, its settings do not load, or validation
// reports inconsistencies. On success the run proceeds on its own goroutine
// and the returned Execution tracks it.
func (r *Runner) Start(ctx context.Context, def *config.Mission) (*Execution, error) {
	runID := uuid.NewString()
	logger := r.logger().WithRunID(runID).WithMission(def.Name)

	sinks := []report.Sink{r.sink}
	if m := r.metrics(); m != nil {
		sinks = append(sinks, report.SinkFunc(func(e report.Entry) {
			m.RecordReportEntry(string(e.Level))
		}))
	}
	var storeSink *stores.ReportSink
	if r.store != nil {
		storeSink = stores.NewReportSink(r.store, runID, logger)
		sinks = append(sinks, storeSink)
	}

	factory := r.newFactory(report.Fanout(sinks...), logger)
	b, err := r.build(def, factory)
	if err != nil {
		return nil, err
	}

	if ics := b.Validate(); !ics.Empty() {
		return nil, fmt.Errorf("mission %q is not runnable: %s",
			def.Name, strings.Join(ics.Messages(), "; "))
	}

	startedAt := r.clock.Now()
	if r.store != nil {
		settings, err := yaml.Marshal(b.SaveSettings())
		if err != nil {
			return nil, fmt.Errorf("snapshotting settings: %w", err)
		}
		run := &stores.Run{
			ID:        runID,
			Mission:   def.Name,
			Behavior:  def.Behavior,
			Status:    stores.RunStatusRunning,
			StartedAt: startedAt,
			Settings:  string(settings),
			CreatedAt: startedAt,
			UpdatedAt: startedAt,
		}
		if err := r.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
	}

	exec := &Execution{
		ID:      runID,
		Mission: def.Name,
		runner:  r,
		b:       b,
		done:    make(chan struct{}),
	}

	var span trace.Span
	if t := r.tracer(); t != nil {
		_, span = t.StartMissionSpan(ctx, runID, def.Name)
	}

	if m := r.metrics(); m != nil {
		m.RecordMissionStarted(def.Name)
	}
	logger.Infof("mission started: behavior %s", def.Behavior)

	if timeout := def.Timeout.Std(); timeout > 0 {
		go func() {
			select {
			case <-exec.done:
			case <-r.clock.After(timeout):
				logger.Warnf("mission timed out after %s, requesting preemption", timeout)
				exec.Preempt()
			}
		}()
	}
	go func() {
		select {
		case <-exec.done:
		case <-ctx.Done():
			exec.Preempt()
		}
	}()

	go exec.run(def, span, startedAt, storeSink, logger)

	return exec, nil
}

func (r *Runner) build(def *config.Mission, factory *behavior.Factory) (behavior.Behavior, error) {
	b, err := factory.Construct(behavior.Type(def.Behavior), behavior.Name(def.Name))
	if err != nil {
		return nil, err
	}
	if err := b.LoadSettings(def.Settings); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Runner) newFactory(sink report.Sink, logger *telemetry.Logger) *behavior.Factory {
	factory := behavior.NewFactory(behavior.NewContext(r.clock, sink, logger))
	for _, register := range r.registrars {
		if err := register(factory); err != nil {
			// Registrar conflicts are programming errors surfaced at startup,
			// not per-run conditions.
			panic(fmt.Sprintf("registering behaviors: %v", err))
		}
	}
	return factory
}

func (r *Runner) logger() *telemetry.Logger {
	if r.tel == nil {
		return telemetry.NopLogger()
	}
	return r.tel.Logger
}

func (r *Runner) metrics() *telemetry.Metrics {
	if r.tel == nil {
		return nil
	}
	return r.tel.Metrics
}

func (r *Runner) tracer() *telemetry.Tracer {
	if r.tel == nil {
		return nil
	}
	return r.tel.Tracer
}

// finalizeRun records the terminal state of a run; persistence failures are
// logged, the run outcome stands regardless.
func (r *Runner) finalizeRun(runID string, outcome behavior.Outcome, duration time.Duration, mission string, logger *telemetry.Logger) {
	if m := r.metrics(); m != nil {
		m.RecordMissionCompleted(mission, string(outcome), duration)
	}
	if r.store == nil {
		return
	}
	out := string(outcome)
	status := stores.StatusForOutcome(out)
	if err := r.store.UpdateRunStatus(context.Background(), runID, status, &out, nil); err != nil {
		logger.WithError(err).Warn("failed to record run completion")
	}
}
