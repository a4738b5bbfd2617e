package behavior

import (
	"runtime"
	"strings"
	"testing"

	"github.com/openmission/openmission/pkg/report"
)

// seq is a plain machine composite used as the outer type in tests.
type seq struct {
	Machine
}

func newSeq(t *testing.T, name Name, sink report.Sink) *seq {
	t.Helper()
	m := &seq{}
	if err := Setup(m, name, "seq", NewContext(nil, sink, nil)); err != nil {
		t.Fatalf("failed to set up machine %q: %v", name, err)
	}
	return m
}

// chain wires children success->next, last success terminal, preemption and
// failure terminal with the like outcome.
func chain(t *testing.T, m *Machine, children ...Behavior) {
	t.Helper()
	for i, child := range children {
		transitions := Transitions{
			Preemption: Terminal(Preemption),
			Failure:    Terminal(Failure),
		}
		if i == len(children)-1 {
			transitions[Success] = Terminal(Success)
		} else {
			transitions[Success] = To(children[i+1].Name())
		}
		if err := m.AddState(child, transitions); err != nil {
			t.Fatalf("failed to add state %q: %v", child.Name(), err)
		}
	}
	if err := m.SetDefaultInitialState(children[0].Name()); err != nil {
		t.Fatalf("failed to set initial state: %v", err)
	}
}

func TestMachineRunsChildrenInSequence(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	b := newStub(t, "b", Success)
	c := newStub(t, "c", Success)
	chain(t, &m.Machine, a, b, c)
	m.SetRestartOnExecution(true)

	if outcome := m.Execute(); outcome != Success {
		t.Fatalf("expected success, got %s", outcome)
	}
	for _, child := range []*stub{a, b, c} {
		if child.midRuns != 1 {
			t.Errorf("child %s ran %d times, expected 1", child.Name(), child.midRuns)
		}
	}
}

func TestMachineChildFailureTerminatesComposite(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	b := newStub(t, "b", Failure)
	c := newStub(t, "c", Success)
	chain(t, &m.Machine, a, b, c)
	m.SetRestartOnExecution(true)

	if outcome := m.Execute(); outcome != Failure {
		t.Fatalf("expected failure, got %s", outcome)
	}
	if c.midRuns != 0 {
		t.Errorf("child after the failing one must not run")
	}
}

func TestMachineTransitionDeterminism(t *testing.T) {
	// The same configuration and child outcomes yield the same walk, run
	// after run.
	for i := 0; i < 5; i++ {
		m := newSeq(t, "mission", nil)
		a := newStub(t, "a", Success)
		b := newStub(t, "b", Success)
		chain(t, &m.Machine, a, b)
		m.SetRestartOnExecution(true)

		if outcome := m.Execute(); outcome != Success {
			t.Fatalf("run %d: expected success, got %s", i, outcome)
		}
	}
}

func TestMachineMissingTransitionIsFatalFailure(t *testing.T) {
	sink := report.NewMemorySink()
	m := newSeq(t, "mission", sink)
	a := newStub(t, "a", Outcome("blocked"))
	a.SetOutcomes("blocked")

	// Table covers only the canonical outcomes; "blocked" is missing.
	err := m.AddState(a, Transitions{
		Success:    Terminal(Success),
		Preemption: Terminal(Preemption),
		Failure:    Terminal(Failure),
	})
	if err != nil {
		t.Fatalf("failed to add state: %v", err)
	}
	if err := m.SetDefaultInitialState("a"); err != nil {
		t.Fatalf("failed to set initial state: %v", err)
	}

	if outcome := m.Execute(); outcome != Failure {
		t.Fatalf("expected fatal failure for missing transition, got %s", outcome)
	}

	var sawDiagnostic bool
	for _, e := range sink.Entries() {
		if e.Level == report.LevelError && strings.Contains(e.Message, "no transition") {
			sawDiagnostic = true
		}
	}
	if !sawDiagnostic {
		t.Errorf("expected an error report naming the missing transition")
	}
}

func TestMachineValidateCatchesIncompleteTable(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Outcome("blocked"))
	a.SetOutcomes("blocked")

	if err := m.AddState(a, Transitions{
		Success:    Terminal(Success),
		Preemption: Terminal(Preemption),
		Failure:    Terminal(Failure),
	}); err != nil {
		t.Fatalf("failed to add state: %v", err)
	}
	if err := m.SetDefaultInitialState("a"); err != nil {
		t.Fatalf("failed to set initial state: %v", err)
	}

	ics := m.Validate()
	if ics.Empty() {
		t.Fatalf("expected inconsistencies for the uncovered outcome")
	}
	var found bool
	for _, msg := range ics.Messages() {
		if strings.Contains(msg, "blocked") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an inconsistency naming outcome blocked, got %v", ics.Messages())
	}
}

func TestMachineValidateCatchesUnknownTarget(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	if err := m.AddState(a, Transitions{
		Success:    To("nowhere"),
		Preemption: Terminal(Preemption),
		Failure:    Terminal(Failure),
	}); err != nil {
		t.Fatalf("failed to add state: %v", err)
	}
	if err := m.SetDefaultInitialState("a"); err != nil {
		t.Fatalf("failed to set initial state: %v", err)
	}

	ics := m.Validate()
	var found bool
	for _, msg := range ics.Messages() {
		if strings.Contains(msg, "nowhere") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an inconsistency naming the unknown target, got %v", ics.Messages())
	}
}

func TestMachineValidateRequiresInitialState(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	if err := m.AddState(a, Transitions{
		Success:    Terminal(Success),
		Preemption: Terminal(Preemption),
		Failure:    Terminal(Failure),
	}); err != nil {
		t.Fatalf("failed to add state: %v", err)
	}

	if m.Validate().Empty() {
		t.Fatalf("expected an inconsistency for the missing initial state")
	}
}

func TestMachineRejectsDuplicateChildNames(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a1 := newStub(t, "a", Success)
	a2 := newStub(t, "a", Success)
	if err := m.AddState(a1, Transitions{Success: Terminal(Success)}); err != nil {
		t.Fatalf("failed to add first child: %v", err)
	}
	if err := m.AddState(a2, Transitions{Success: Terminal(Success)}); err == nil {
		t.Fatalf("expected an error for the duplicate child name")
	}
}

func TestMachineRestartPolicy(t *testing.T) {
	// restart=false resumes at the child that was active when the previous
	// execution ended; restart=true starts over.
	build := func(restart bool) (*seq, *stub, *stub) {
		m := newSeq(t, "mission", nil)
		a := newStub(t, "a", Preemption) // first run ends at a via preemption
		b := newStub(t, "b", Success)
		if err := m.AddState(a, Transitions{
			Success:    To("b"),
			Preemption: Terminal(Preemption),
			Failure:    Terminal(Failure),
		}); err != nil {
			t.Fatalf("failed to add a: %v", err)
		}
		if err := m.AddState(b, Transitions{
			Success:    Terminal(Success),
			Preemption: Terminal(Preemption),
			Failure:    Terminal(Failure),
		}); err != nil {
			t.Fatalf("failed to add b: %v", err)
		}
		if err := m.SetDefaultInitialState("a"); err != nil {
			t.Fatalf("failed to set initial state: %v", err)
		}
		m.SetRestartOnExecution(restart)
		return m, a, b
	}

	// With restart, the second execution runs child a again.
	m, a, _ := build(true)
	if outcome := m.Execute(); outcome != Preemption {
		t.Fatalf("expected preemption, got %s", outcome)
	}
	a.outcome = Success
	if outcome := m.Execute(); outcome != Success {
		t.Fatalf("expected success on restart, got %s", outcome)
	}
	if a.midRuns != 2 {
		t.Errorf("restart: child a should run twice, ran %d times", a.midRuns)
	}

	// Without restart, the second execution resumes at child a as well (it
	// was active when the run ended), then proceeds to b.
	m, a, b := build(false)
	if outcome := m.Execute(); outcome != Preemption {
		t.Fatalf("expected preemption, got %s", outcome)
	}
	a.outcome = Success
	if outcome := m.Execute(); outcome != Success {
		t.Fatalf("expected success on resume, got %s", outcome)
	}
	if b.midRuns != 1 {
		t.Errorf("resume: child b should have run once, ran %d times", b.midRuns)
	}
}

func TestMachinePreemptionReachesActiveChild(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	a.blocked = make(chan struct{})
	b := newStub(t, "b", Success)
	chain(t, &m.Machine, a, b)
	m.SetRestartOnExecution(true)

	result := make(chan Outcome, 1)
	go func() { result <- m.Execute() }()

	for !a.Executing() {
		runtime.Gosched()
	}
	m.RequestPreemption()

	if outcome := <-result; outcome != Preemption {
		t.Fatalf("expected preemption, got %s", outcome)
	}
	if b.midRuns != 0 {
		t.Errorf("child after the preempted one must not run")
	}
}

func TestMachinePreemptionBetweenChildrenIsNotLost(t *testing.T) {
	// A request landing after a child finished but before the next one
	// starts preempts the next child before it runs.
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	b := newStub(t, "b", Success)
	chain(t, &m.Machine, a, b)
	m.SetRestartOnExecution(true)

	a.onPost = func() { m.RequestPreemption() }

	if outcome := m.Execute(); outcome != Preemption {
		t.Fatalf("expected preemption, got %s", outcome)
	}
	if b.midRuns != 0 {
		t.Errorf("preempted-before-start child must not run, ran %d times", b.midRuns)
	}
}

func TestMachineRequestBeforeExecutionPreemptsIt(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	chain(t, &m.Machine, a)
	m.SetRestartOnExecution(true)

	m.RequestPreemption()
	if outcome := m.Execute(); outcome != Preemption {
		t.Fatalf("a request raised before execution must preempt it, got %s", outcome)
	}
	if a.midRuns != 0 {
		t.Errorf("the preempted child must not run, ran %d times", a.midRuns)
	}

	// The request is consumed; the next execution proceeds normally.
	if outcome := m.Execute(); outcome != Success {
		t.Fatalf("a consumed request must not leak into the next execution, got %s", outcome)
	}
}

func TestMachineProgressCountsStates(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	b := newStub(t, "b", Success)
	chain(t, &m.Machine, a, b)
	m.SetRestartOnExecution(true)

	// Observed from inside child b, one of two states is complete.
	var observed Progress
	b.onMid = func() { observed = m.Progress() }

	if outcome := m.Execute(); outcome != Success {
		t.Fatalf("expected success, got %s", outcome)
	}
	if observed.Done != 1 || observed.Goal != 2 || observed.Unit != "states" {
		t.Errorf("unexpected mid-run progress: %+v", observed)
	}
	if !m.Progress().IsZero() {
		t.Errorf("progress must reset after execution")
	}
}

func TestMachineNestedNamesAreReRooted(t *testing.T) {
	outer := newSeq(t, "mission", nil)
	inner := &seq{}
	if err := Setup(inner, "phase", "seq", NewContext(nil, nil, nil)); err != nil {
		t.Fatalf("setup inner: %v", err)
	}
	leaf := newStub(t, "step", Success)
	chain(t, &inner.Machine, leaf)
	chain(t, &outer.Machine, inner)

	if got := leaf.NestedName(); got != "mission.phase.step" {
		t.Errorf("expected nested name mission.phase.step, got %s", got)
	}
}

func TestChildAs(t *testing.T) {
	m := newSeq(t, "mission", nil)
	a := newStub(t, "a", Success)
	chain(t, &m.Machine, a)

	got, err := ChildAs[*stub](&m.Machine, "a")
	if err != nil {
		t.Fatalf("expected typed child, got error: %v", err)
	}
	if got != a {
		t.Errorf("expected the identical child instance")
	}

	if _, err := ChildAs[*seq](&m.Machine, "a"); err == nil {
		t.Errorf("expected an error for the wrong child type")
	}
	if _, err := ChildAs[*stub](&m.Machine, "missing"); err == nil {
		t.Errorf("expected an error for a missing child")
	}
}
