package behaviors

import (
	"github.com/openmission/openmission/pkg/behavior"
)

// Sequence is a composite that runs its children in order: each child's
// success leads to the next child, the last child's success terminates the
// sequence with success, and preemption or failure of any child terminates
// the sequence with the like outcome.
//
// Sequences are assembled in code with Chain, so the type is not factory
// registered on its own; registered composites embed it and chain their
// children during Init.
type Sequence struct {
	behavior.Machine
}

// Init configures the sequence to restart from its first child on every
// execution. Embedding composites may override the restart policy after
// chaining.
func (s *Sequence) Init() error {
	s.SetRestartOnExecution(true)
	return nil
}

// Chain adds the children in order and wires the sequential transitions.
// Children must already be constructed (via a factory or Setup).
func (s *Sequence) Chain(children ...behavior.Behavior) error {
	for i, child := range children {
		transitions := behavior.Transitions{
			behavior.Preemption: behavior.Terminal(behavior.Preemption),
			behavior.Failure:    behavior.Terminal(behavior.Failure),
		}
		if i == len(children)-1 {
			transitions[behavior.Success] = behavior.Terminal(behavior.Success)
		} else {
			transitions[behavior.Success] = behavior.To(children[i+1].Name())
		}
		if err := s.AddState(child, transitions); err != nil {
			return err
		}
	}
	if len(children) > 0 {
		return s.SetDefaultInitialState(children[0].Name())
	}
	return nil
}
