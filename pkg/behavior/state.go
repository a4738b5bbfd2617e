package behavior

import (
	"fmt"
	"sync"

	"github.com/openmission/openmission/pkg/report"
)

// Behavior is the capability interface every mission behavior satisfies,
// leaves and composites alike. Implementations embed Leaf (directly, or via
// Machine), which provides the execution protocol; the unexported bind
// method keeps foreign implementations out.
type Behavior interface {
	// Name returns the behavior's name within its parent's child set.
	Name() Name

	// NestedName returns the dot-separated path of the behavior within the
	// composite tree it belongs to, used in reports and diagnostics.
	NestedName() string

	// BehaviorType returns the registered type the behavior was built from.
	BehaviorType() Type

	// Outcomes returns the declared outcome set.
	Outcomes() OutcomeSet

	// NominalOutcome returns the outcome the behavior is expected to
	// produce, used by preview tooling to simulate execution.
	NominalOutcome() Outcome

	// Execute runs the behavior to a terminal outcome. It is synchronous
	// from the caller's point of view and returns exactly one outcome per
	// call. It must only be called when Validate returns no inconsistencies.
	Execute() Outcome

	// Validate returns the behavior's configuration inconsistencies. It is
	// pure, performs no I/O, and is callable without ever executing, so
	// external editing tooling can inspect behaviors safely.
	Validate() Inconsistencies

	// SaveSettings emits the ordered parameter sequence sufficient to
	// reconstruct the behavior's configuration.
	SaveSettings() Settings

	// LoadSettings applies a saved parameter sequence. Loading the output
	// of SaveSettings reproduces an equivalent configuration. Parameters
	// the behavior does not know are ignored for forward compatibility.
	LoadSettings(settings Settings) error

	// Progress returns the latest progress snapshot, or a zero Progress
	// when no execution is active. Safe to call concurrently with Execute.
	Progress() Progress

	// RequestPreemption asks the behavior to stop cooperatively. It only
	// signals: the behavior completes later, on the execution thread, by
	// returning the Preemption outcome. A request raised while no execution
	// is in flight preempts the next execution instead. Non-blocking.
	RequestPreemption()

	// PreemptionRequested reports whether a preemption request is pending
	// for the current execution.
	PreemptionRequested() bool

	bind(self Behavior, name Name, typ Type, ctx *Context)
	setNestedPrefix(prefix string)
}

// MidExecutor is the one mandatory hook of a leaf behavior: the actual work.
// It must eventually observe a pending preemption request and return the
// Preemption outcome; the engine never forcibly terminates it.
type MidExecutor interface {
	RunMidExecution() Outcome
}

// PreExecutor is an optional hook run before mid-execution. Transient
// execution resources (action handles, feedback buffers) are created here.
// A returned error aborts the execution with outcome Failure.
type PreExecutor interface {
	RunPreExecution() error
}

// PostExecutor is an optional hook guaranteed to run on every exit path of
// mid-execution: normal, failure or preemption. Transient resources are
// released here.
type PostExecutor interface {
	RunPostExecution()
}

// PreemptionNotifier is an optional hook invoked when preemption is
// requested. It must return immediately without blocking; it only signals
// cancellation, e.g. by cancelling an in-flight action goal.
type PreemptionNotifier interface {
	OnPreemptionRequest()
}

// Initializer is an optional hook invoked by the factory right after
// construction and context injection. It performs static configuration
// only: declaring outcomes, creating child behaviors. No I/O, no external
// connections; instances are also built by editing tools that never execute.
type Initializer interface {
	Init() error
}

// SettingsMarshaler is an optional hook contributing the behavior's editable
// parameters to SaveSettings.
type SettingsMarshaler interface {
	MarshalSettings(settings *Settings)
}

// SettingsUnmarshaler is an optional hook applying parameters from
// LoadSettings.
type SettingsUnmarshaler interface {
	UnmarshalSettings(settings Settings) error
}

// ConsistencyChecker is an optional hook contributing behavior-specific
// inconsistencies to Validate.
type ConsistencyChecker interface {
	CheckConsistency() Inconsistencies
}

// Leaf is the base of every atomic behavior. Concrete behaviors embed Leaf
// and implement the hook interfaces above; Leaf drives the execution
// protocol: PreExecution, MidExecution, PostExecution, with PostExecution
// guaranteed on every exit path and preemption as an asynchronous overlay.
type Leaf struct {
	name   Name
	nested string
	typ    Type
	ctx    *Context

	// self is the outer behavior value, set by bind. Hook dispatch goes
	// through it so embedding types override the protocol steps.
	self Behavior

	outcomes OutcomeSet
	nominal  Outcome

	progress progressCell

	mu        sync.Mutex
	executing bool
	preempted bool
	preemptCh chan struct{}
}

func (l *Leaf) bind(self Behavior, name Name, typ Type, ctx *Context) {
	l.self = self
	l.name = name
	l.nested = string(name)
	l.typ = typ
	l.ctx = ctx
	l.outcomes = NewOutcomeSet()
	l.nominal = Success
	l.preemptCh = make(chan struct{})
}

func (l *Leaf) setNestedPrefix(prefix string) {
	l.nested = prefix + "." + string(l.name)
}

// Name returns the behavior's name.
func (l *Leaf) Name() Name { return l.name }

// NestedName returns the behavior's path within its composite tree.
func (l *Leaf) NestedName() string { return l.nested }

// BehaviorType returns the registered type of the behavior.
func (l *Leaf) BehaviorType() Type { return l.typ }

// Context returns the shared collaborator bag.
func (l *Leaf) Context() *Context { return l.ctx }

// SetOutcomes declares the behavior's custom outcomes in addition to the
// canonical success, preemption and failure. Construction-time only.
func (l *Leaf) SetOutcomes(custom ...Outcome) {
	l.outcomes = NewOutcomeSet(custom...)
}

// Outcomes returns the declared outcome set.
func (l *Leaf) Outcomes() OutcomeSet { return l.outcomes }

// SetNominalOutcome declares the outcome the behavior is expected to
// produce. Construction-time only.
func (l *Leaf) SetNominalOutcome(o Outcome) { l.nominal = o }

// NominalOutcome returns the expected outcome, Success by default.
func (l *Leaf) NominalOutcome() Outcome { return l.nominal }

// Execute drives one full execution: pre-execution, mid-execution,
// post-execution. Exactly one declared outcome is returned per call; an
// undeclared outcome surfacing from a hook is a structural defect and is
// normalized to Failure with an error-level report entry.
func (l *Leaf) Execute() Outcome {
	mid, ok := l.self.(MidExecutor)
	if !ok {
		l.Report(report.LevelError, "behavior does not implement mid-execution")
		return Failure
	}

	l.beginExecution()
	defer l.endExecution()

	// Post-execution is registered before pre-execution runs so partially
	// acquired resources are released even when pre-execution fails.
	if post, ok := l.self.(PostExecutor); ok {
		defer post.RunPostExecution()
	}

	if pre, ok := l.self.(PreExecutor); ok {
		if err := pre.RunPreExecution(); err != nil {
			l.Reportf(report.LevelError, "pre-execution failed: %v", err)
			return Failure
		}
	}

	outcome := mid.RunMidExecution()
	if !l.outcomes.Contains(outcome) {
		l.Reportf(report.LevelError, "undeclared outcome %q, treating as failure", outcome)
		return Failure
	}
	return outcome
}

func (l *Leaf) beginExecution() {
	l.mu.Lock()
	l.executing = true
	l.mu.Unlock()
	l.progress.reset()
}

// endExecution consumes a pending preemption request: each request preempts
// at most one execution, and a request raised before an execution starts
// preempts that execution instead of being dropped.
func (l *Leaf) endExecution() {
	l.mu.Lock()
	l.executing = false
	if l.preempted {
		l.preempted = false
		l.preemptCh = make(chan struct{})
	}
	l.mu.Unlock()
	l.progress.reset()
}

// Executing reports whether an execution is currently in flight.
func (l *Leaf) Executing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.executing
}

// RequestPreemption signals cooperative cancellation. The pending request is
// observable through PreemptionRequested and PreemptionSignal; the optional
// PreemptionNotifier hook is invoked exactly once per request.
func (l *Leaf) RequestPreemption() {
	l.mu.Lock()
	already := l.preempted
	l.preempted = true
	ch := l.preemptCh
	l.mu.Unlock()
	if already {
		return
	}
	if ch != nil {
		close(ch)
	}
	if n, ok := l.self.(PreemptionNotifier); ok {
		n.OnPreemptionRequest()
	}
}

// PreemptionRequested reports whether preemption is pending.
func (l *Leaf) PreemptionRequested() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.preempted
}

// PreemptionSignal returns a channel closed when preemption is requested.
// Mid-execution selects on it alongside its own work.
func (l *Leaf) PreemptionSignal() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.preemptCh
}

// SetProgress replaces the progress snapshot. The execution thread (or an
// action feedback callback it installed) is the sole writer.
func (l *Leaf) SetProgress(p Progress) {
	l.progress.store(p)
}

// Progress returns the latest progress snapshot, zero when idle.
func (l *Leaf) Progress() Progress {
	return l.progress.load()
}

// Validate returns the behavior's inconsistencies: the protocol-level ones
// plus whatever the optional ConsistencyChecker hook contributes.
func (l *Leaf) Validate() Inconsistencies {
	var ics Inconsistencies
	if _, ok := l.self.(MidExecutor); !ok {
		ics.Addf(l.nested, "behavior does not implement mid-execution")
	}
	if c, ok := l.self.(ConsistencyChecker); ok {
		ics = append(ics, c.CheckConsistency()...)
	}
	return ics
}

// SaveSettings collects the behavior's editable parameters.
func (l *Leaf) SaveSettings() Settings {
	var s Settings
	if m, ok := l.self.(SettingsMarshaler); ok {
		m.MarshalSettings(&s)
	}
	return s
}

// LoadSettings applies a saved parameter sequence.
func (l *Leaf) LoadSettings(settings Settings) error {
	if u, ok := l.self.(SettingsUnmarshaler); ok {
		if err := u.UnmarshalSettings(settings); err != nil {
			return wrapError(ErrorClassConfiguration, l.nested, err, "loading settings")
		}
	}
	return nil
}

// Report emits a report entry for this behavior, stamped with the mission
// clock.
func (l *Leaf) Report(level report.Level, message string) {
	l.addEntry(report.NewEntry(l.nested, level, message))
}

// Reportf emits a formatted report entry.
func (l *Leaf) Reportf(level report.Level, format string, args ...interface{}) {
	l.Report(level, fmt.Sprintf(format, args...))
}

// ReportValue emits a report entry carrying a numeric value and unit.
func (l *Leaf) ReportValue(level report.Level, message string, value float64, unit string) {
	l.addEntry(report.NewEntry(l.nested, level, message).WithValue(value, unit))
}

func (l *Leaf) addEntry(e report.Entry) {
	if l.ctx == nil {
		return
	}
	e.Time = l.ctx.Clock().Now()
	l.ctx.Reporter().Add(e)
}
