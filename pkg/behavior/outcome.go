package behavior

// Outcome is the terminal result of executing a behavior.
//
// Every behavior can produce the three canonical outcomes. Custom outcomes
// may be declared at construction time; a composite's transition table must
// cover every declared outcome of every child it owns.
type Outcome string

const (
	// Success indicates the behavior completed its task.
	Success Outcome = "success"

	// Preemption indicates the behavior observed a cooperative cancellation
	// request and stopped. It is a successful stop, not an error.
	Preemption Outcome = "preemption"

	// Failure indicates the behavior started and could not complete.
	Failure Outcome = "failure"
)

// Name uniquely identifies a behavior within its parent's child set.
type Name string

// Type identifies a concrete behavior implementation, resolved by a Factory.
type Type string

// OutcomeSet is an ordered, deduplicated set of declared outcomes. The three
// canonical outcomes are always members.
type OutcomeSet struct {
	outcomes []Outcome
}

// NewOutcomeSet builds an outcome set from the canonical outcomes plus the
// given custom outcomes. Duplicates are dropped, order is preserved.
func NewOutcomeSet(custom ...Outcome) OutcomeSet {
	s := OutcomeSet{}
	for _, o := range []Outcome{Success, Preemption, Failure} {
		s.add(o)
	}
	for _, o := range custom {
		s.add(o)
	}
	return s
}

func (s *OutcomeSet) add(o Outcome) {
	if s.Contains(o) {
		return
	}
	s.outcomes = append(s.outcomes, o)
}

// Contains reports whether the outcome is declared in the set.
func (s OutcomeSet) Contains(o Outcome) bool {
	for _, have := range s.outcomes {
		if have == o {
			return true
		}
	}
	return false
}

// List returns the declared outcomes in declaration order.
func (s OutcomeSet) List() []Outcome {
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Len returns the number of declared outcomes.
func (s OutcomeSet) Len() int {
	return len(s.outcomes)
}
