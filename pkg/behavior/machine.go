package behavior

import (
	"sync"

	"github.com/openmission/openmission/pkg/report"
)

// Target is the destination of a transition: either a sibling behavior to
// execute next, or a terminal outcome returned to the composite's caller.
type Target struct {
	state    Name
	outcome  Outcome
	terminal bool
}

// To returns a target naming the sibling to execute next.
func To(state Name) Target {
	return Target{state: state}
}

// Terminal returns a target ending the composite with the given outcome.
func Terminal(outcome Outcome) Target {
	return Target{outcome: outcome, terminal: true}
}

// IsTerminal reports whether the target ends the composite's execution.
func (t Target) IsTerminal() bool { return t.terminal }

// State returns the sibling name of a non-terminal target.
func (t Target) State() Name { return t.state }

// Outcome returns the outcome of a terminal target.
func (t Target) Outcome() Outcome { return t.outcome }

// Transitions maps each declared outcome of a child to its target. A
// composite's table must cover every declared outcome of every child.
type Transitions map[Outcome]Target

// Machine is a composite behavior: a set of named children plus a per-child
// transition table, executed as a deterministic finite automaton over child
// names. Machine embeds Leaf, so a composite is itself a Behavior and
// composites nest arbitrarily.
//
// The child set and tables are built at construction time and are immutable
// during execution; only the current-child cursor mutates, guarded for the
// preemption thread.
type Machine struct {
	Leaf

	children    map[Name]Behavior
	order       []Name
	transitions map[Name]Transitions
	initial     Name
	restart     bool

	// execMu guards the cursor and the active child, which the preemption
	// thread reads while the execution thread advances the automaton.
	execMu  sync.Mutex
	current Name
	active  Behavior
}

// AddState adds a named child with its transition table. Construction-time
// only: it must not be called concurrently with execution. The child keeps
// the name it was constructed with; its nested name is re-rooted under this
// machine.
func (m *Machine) AddState(child Behavior, transitions Transitions) error {
	if child == nil {
		return newError(ErrorClassStructure, m.NestedName(), "cannot add nil child")
	}
	name := child.Name()
	if name == "" {
		return newError(ErrorClassStructure, m.NestedName(), "child has no name; construct it via a factory first")
	}
	if m.children == nil {
		m.children = make(map[Name]Behavior)
		m.transitions = make(map[Name]Transitions)
	}
	if _, exists := m.children[name]; exists {
		return newError(ErrorClassStructure, m.NestedName(), "duplicate child name %q", name)
	}

	table := make(Transitions, len(transitions))
	for outcome, target := range transitions {
		table[outcome] = target
	}

	m.children[name] = child
	m.order = append(m.order, name)
	m.transitions[name] = table
	child.setNestedPrefix(m.NestedName())
	return nil
}

// setNestedPrefix re-roots the machine and, recursively, its whole subtree.
func (m *Machine) setNestedPrefix(prefix string) {
	m.Leaf.setNestedPrefix(prefix)
	for _, name := range m.order {
		m.children[name].setNestedPrefix(m.NestedName())
	}
}

// SetDefaultInitialState selects the child every fresh execution starts at.
// Exactly one child must be marked default-initial.
func (m *Machine) SetDefaultInitialState(name Name) error {
	if _, ok := m.children[name]; !ok {
		return newError(ErrorClassStructure, m.NestedName(), "unknown initial state %q", name)
	}
	m.initial = name
	return nil
}

// SetRestartOnExecution selects whether each Execute call resets to the
// default initial child (true, stateless) or resumes at whichever child was
// active at the end of the previous call (false, persistent progress).
func (m *Machine) SetRestartOnExecution(restart bool) {
	m.restart = restart
}

// RestartOnExecution returns the configured restart policy.
func (m *Machine) RestartOnExecution() bool {
	return m.restart
}

// Children returns the child names in insertion order.
func (m *Machine) Children() []Name {
	out := make([]Name, len(m.order))
	copy(out, m.order)
	return out
}

// Child returns the named child behavior.
func (m *Machine) Child(name Name) (Behavior, error) {
	child, ok := m.children[name]
	if !ok {
		return nil, wrapError(ErrorClassStructure, m.NestedName(), ErrChildNotFound, "no child %q", name)
	}
	return child, nil
}

// ChildAs returns the named child of machine m as concrete type T. It fails
// with an explicit error when the child is missing or has another type; no
// unchecked downcasts.
func ChildAs[T Behavior](m *Machine, name Name) (T, error) {
	var zero T
	child, err := m.Child(name)
	if err != nil {
		return zero, err
	}
	typed, ok := child.(T)
	if !ok {
		return zero, wrapError(ErrorClassStructure, m.NestedName(), ErrChildType,
			"child %q is %T", name, child)
	}
	return typed, nil
}

// RunMidExecution walks the transition table: execute the current child,
// look up (child, outcome), continue at the named sibling or return the
// terminal outcome. A child outcome missing from the table is a structural
// defect; static validation catches it before execution, and if it occurs
// anyway it is a fatal failure with a diagnostic report entry, never
// silently dropped.
func (m *Machine) RunMidExecution() Outcome {
	m.execMu.Lock()
	if m.restart || m.current == "" {
		m.current = m.initial
	}
	current := m.current
	m.execMu.Unlock()

	if current == "" {
		m.Report(report.LevelError, "no default initial state configured")
		return Failure
	}

	executed := make(map[Name]struct{})
	for {
		child, ok := m.children[current]
		if !ok {
			m.Reportf(report.LevelError, "transition targets unknown state %q", current)
			return Failure
		}

		m.execMu.Lock()
		m.current = current
		m.active = child
		pending := m.PreemptionRequested()
		m.execMu.Unlock()

		var outcome Outcome
		if pending {
			// A request that arrived between children preempts the next child
			// before it starts; the transition table decides what follows, the
			// same as for a child preempted mid-flight.
			outcome = Preemption
		} else {
			outcome = child.Execute()
		}

		m.execMu.Lock()
		m.active = nil
		m.execMu.Unlock()

		executed[current] = struct{}{}
		m.SetProgress(Progress{
			Goal: float64(len(m.order)),
			Done: float64(len(executed)),
			Unit: "states",
		})

		target, ok := m.transitions[current][outcome]
		if !ok {
			m.Reportf(report.LevelError,
				"no transition from state %q for outcome %q", current, outcome)
			return Failure
		}
		if target.IsTerminal() {
			return target.Outcome()
		}
		current = target.State()
	}
}

// OnPreemptionRequest forwards the request to whichever child is presently
// active. Non-blocking: the child completes later on the execution thread.
func (m *Machine) OnPreemptionRequest() {
	m.execMu.Lock()
	active := m.active
	m.execMu.Unlock()
	if active != nil {
		active.RequestPreemption()
	}
}

// Validate checks the machine's structure and aggregates child
// inconsistencies: a default initial child must be set, every declared
// outcome of every child must have a transition entry, and every
// non-terminal target must name an existing sibling.
func (m *Machine) Validate() Inconsistencies {
	var ics Inconsistencies
	nested := m.NestedName()

	if len(m.children) == 0 {
		ics.Addf(nested, "composite has no children")
	}
	if m.initial == "" {
		ics.Addf(nested, "no default initial state configured")
	}

	for _, name := range m.order {
		child := m.children[name]
		table := m.transitions[name]
		for _, outcome := range child.Outcomes().List() {
			target, ok := table[outcome]
			if !ok {
				ics.Addf(nested, "state %q has no transition for outcome %q", name, outcome)
				continue
			}
			if !target.IsTerminal() {
				if _, ok := m.children[target.State()]; !ok {
					ics.Addf(nested, "state %q transitions to unknown state %q on outcome %q",
						name, target.State(), outcome)
				}
			} else if !m.Outcomes().Contains(target.Outcome()) {
				ics.Addf(nested, "state %q terminates with undeclared outcome %q",
					name, target.Outcome())
			}
		}
		for outcome := range table {
			if !child.Outcomes().Contains(outcome) {
				ics.Addf(nested, "state %q has a transition for undeclared outcome %q", name, outcome)
			}
		}
		ics = append(ics, child.Validate()...)
	}

	if c, ok := m.self.(ConsistencyChecker); ok {
		ics = append(ics, c.CheckConsistency()...)
	}
	return ics
}
