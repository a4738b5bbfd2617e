package mission

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/config"
	"github.com/openmission/openmission/pkg/report"
	"github.com/openmission/openmission/pkg/stores"
)

// probe is a configurable leaf for runner tests.
type probe struct {
	behavior.Leaf

	outcome    behavior.Outcome
	mustSet    bool
	configured bool

	// block makes execution wait for preemption.
	block bool
}

func (p *probe) Init() error {
	if p.outcome == "" {
		p.outcome = behavior.Success
	}
	return nil
}

func (p *probe) RunMidExecution() behavior.Outcome {
	if p.block {
		<-p.PreemptionSignal()
		return behavior.Preemption
	}
	return p.outcome
}

func (p *probe) UnmarshalSettings(s behavior.Settings) error {
	if param, ok := s.Get("configured"); ok {
		v, err := param.AsBool()
		if err != nil {
			return err
		}
		p.configured = v
	}
	return nil
}

func (p *probe) MarshalSettings(s *behavior.Settings) {
	s.Add(behavior.BoolParameter("configured", p.configured))
}

func (p *probe) CheckConsistency() behavior.Inconsistencies {
	var ics behavior.Inconsistencies
	if p.mustSet && !p.configured {
		ics.Addf(p.NestedName(), "the probe has not been configured")
	}
	return ics
}

func registerProbes(block, mustSet bool, outcome behavior.Outcome) Registrar {
	return func(f *behavior.Factory) error {
		return f.Register("probe", func() behavior.Behavior {
			return &probe{outcome: outcome, block: block, mustSet: mustSet}
		})
	}
}

func testStore(t *testing.T) stores.Store {
	t.Helper()
	store, err := stores.NewSQLiteStore(stores.Config{Path: t.TempDir() + "/runs.db"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunnerStartToSuccess(t *testing.T) {
	sink := report.NewMemorySink()
	runner := NewRunner(RunnerOptions{
		Sink:       sink,
		Registrars: []Registrar{registerProbes(false, false, behavior.Success)},
	})

	exec, err := runner.Start(context.Background(), &config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if exec.ID == "" {
		t.Errorf("expected a generated run ID")
	}

	if outcome := exec.Wait(); outcome != behavior.Success {
		t.Fatalf("expected success, got %s", outcome)
	}
	if outcome, ended := exec.Outcome(); !ended || outcome != behavior.Success {
		t.Errorf("expected recorded outcome success, got %s (ended=%v)", outcome, ended)
	}
}

func TestRunnerRefusesInconsistentMission(t *testing.T) {
	runner := NewRunner(RunnerOptions{
		Registrars: []Registrar{registerProbes(false, true, behavior.Success)},
	})

	_, err := runner.Start(context.Background(), &config.Mission{Name: "m", Behavior: "probe"})
	if err == nil {
		t.Fatalf("expected a configuration error for the unconfigured probe")
	}
}

func TestRunnerStartsConfiguredMission(t *testing.T) {
	runner := NewRunner(RunnerOptions{
		Registrars: []Registrar{registerProbes(false, true, behavior.Success)},
	})

	var settings behavior.Settings
	settings.Add(behavior.BoolParameter("configured", true))

	exec, err := runner.Start(context.Background(), &config.Mission{
		Name:     "m",
		Behavior: "probe",
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if outcome := exec.Wait(); outcome != behavior.Success {
		t.Fatalf("expected success, got %s", outcome)
	}
}

func TestRunnerUnknownBehaviorType(t *testing.T) {
	runner := NewRunner(RunnerOptions{})
	_, err := runner.Start(context.Background(), &config.Mission{Name: "m", Behavior: "ghost"})
	if err == nil {
		t.Fatalf("expected an error for the unknown behavior type")
	}
}

func TestRunnerPreemption(t *testing.T) {
	runner := NewRunner(RunnerOptions{
		Registrars: []Registrar{registerProbes(true, false, behavior.Success)},
	})

	exec, err := runner.Start(context.Background(), &config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	exec.Preempt()
	if outcome := exec.Wait(); outcome != behavior.Preemption {
		t.Fatalf("expected preemption, got %s", outcome)
	}
}

func TestRunnerContextCancellationPreempts(t *testing.T) {
	runner := NewRunner(RunnerOptions{
		Registrars: []Registrar{registerProbes(true, false, behavior.Success)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	exec, err := runner.Start(ctx, &config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	cancel()
	if outcome := exec.Wait(); outcome != behavior.Preemption {
		t.Fatalf("expected preemption on context cancellation, got %s", outcome)
	}
}

func TestRunnerTimeoutPreempts(t *testing.T) {
	clock := behavior.NewManualClock(time.Unix(0, 0))
	runner := NewRunner(RunnerOptions{
		Clock:      clock,
		Registrars: []Registrar{registerProbes(true, false, behavior.Success)},
	})

	exec, err := runner.Start(context.Background(), &config.Mission{
		Name:     "m",
		Behavior: "probe",
		Timeout:  config.Duration(time.Minute),
	})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	for clock.Waiters() == 0 {
		runtime.Gosched()
	}
	clock.Advance(time.Minute)

	if outcome := exec.Wait(); outcome != behavior.Preemption {
		t.Fatalf("expected preemption on timeout, got %s", outcome)
	}
}

func TestRunnerPersistsRunAndReports(t *testing.T) {
	store := testStore(t)
	runner := NewRunner(RunnerOptions{
		Store:      store,
		Registrars: []Registrar{registerProbes(false, false, behavior.Success)},
	})

	ctx := context.Background()
	exec, err := runner.Start(ctx, &config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if outcome := exec.Wait(); outcome != behavior.Success {
		t.Fatalf("expected success, got %s", outcome)
	}

	run, err := store.GetRun(ctx, exec.ID)
	if err != nil {
		t.Fatalf("run record missing: %v", err)
	}
	if run.Mission != "m" || run.Behavior != "probe" {
		t.Errorf("unexpected run record: %+v", run)
	}
	if run.Status != stores.RunStatusSucceeded {
		t.Errorf("expected status succeeded, got %s", run.Status)
	}
	if run.Outcome == nil || *run.Outcome != "success" {
		t.Errorf("expected outcome success, got %v", run.Outcome)
	}
	if run.Settings == "" {
		t.Errorf("expected a settings snapshot")
	}
}

func TestRunnerValidateWithoutExecuting(t *testing.T) {
	runner := NewRunner(RunnerOptions{
		Registrars: []Registrar{registerProbes(false, true, behavior.Success)},
	})

	ics, err := runner.Validate(&config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if ics.Empty() {
		t.Fatalf("expected inconsistencies from the unconfigured probe")
	}
}

func TestRunnerReportsReachBaseSink(t *testing.T) {
	sink := report.NewMemorySink()
	runner := NewRunner(RunnerOptions{
		Sink: sink,
		Registrars: []Registrar{func(f *behavior.Factory) error {
			return f.Register("probe", func() behavior.Behavior {
				return &reportingProbe{}
			})
		}},
	})

	exec, err := runner.Start(context.Background(), &config.Mission{Name: "m", Behavior: "probe"})
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	exec.Wait()

	var found bool
	for _, e := range sink.Entries() {
		if e.Message == "phase complete" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the behavior's report in the base sink")
	}
}

type reportingProbe struct {
	behavior.Leaf
}

func (r *reportingProbe) RunMidExecution() behavior.Outcome {
	r.Report(report.LevelInfo, "phase complete")
	return behavior.Success
}
