package behaviors

import (
	"github.com/openmission/openmission/pkg/behavior"
)

// TypeCountTwice is the registered type of the CountTwice behavior.
const TypeCountTwice behavior.Type = "count_twice"

// CountTwice runs two CountTo children in sequence. The target is a single
// logical parameter replicated to both children; the children must stay
// synchronized, and disagreement is flagged by validation rather than
// silently resolved.
type CountTwice struct {
	Sequence
}

const (
	countTwiceFirst  behavior.Name = "count1"
	countTwiceSecond behavior.Name = "count2"
)

// NewCountTwice constructs an unbound CountTwice behavior.
func NewCountTwice() behavior.Behavior {
	return &CountTwice{}
}

// Init creates the two children and wires the sequential transitions.
// Construction is static: no action handles exist until pre-execution.
func (c *CountTwice) Init() error {
	c.SetRestartOnExecution(true)

	first := &CountTo{interval: defaultCountInterval}
	if err := behavior.Setup(first, countTwiceFirst, TypeCountTo, c.Context()); err != nil {
		return err
	}
	second := &CountTo{interval: defaultCountInterval}
	if err := behavior.Setup(second, countTwiceSecond, TypeCountTo, c.Context()); err != nil {
		return err
	}

	if err := c.Chain(first, second); err != nil {
		return err
	}
	return nil
}

// SetTarget replicates the target to both children.
func (c *CountTwice) SetTarget(target int) error {
	for _, name := range []behavior.Name{countTwiceFirst, countTwiceSecond} {
		child, err := behavior.ChildAs[*CountTo](&c.Machine, name)
		if err != nil {
			return err
		}
		child.SetTarget(target)
	}
	return nil
}

// Target returns the configured target. The children are kept synchronized,
// so the first child's value stands for both.
func (c *CountTwice) Target() (int, error) {
	child, err := behavior.ChildAs[*CountTo](&c.Machine, countTwiceFirst)
	if err != nil {
		return 0, err
	}
	return child.Target(), nil
}

// MarshalSettings stores the shared target if it has been set.
func (c *CountTwice) MarshalSettings(settings *behavior.Settings) {
	target, err := c.Target()
	if err != nil || target <= 0 {
		return
	}
	settings.Add(behavior.IntParameter("target", target))
}

// UnmarshalSettings applies the shared target if present.
func (c *CountTwice) UnmarshalSettings(settings behavior.Settings) error {
	if p, ok := settings.Get("target"); ok {
		target, err := p.AsInt()
		if err != nil {
			return err
		}
		return c.SetTarget(target)
	}
	return nil
}

// CheckConsistency flags children that have drifted apart on the shared
// target.
func (c *CountTwice) CheckConsistency() behavior.Inconsistencies {
	var ics behavior.Inconsistencies
	first, err1 := behavior.ChildAs[*CountTo](&c.Machine, countTwiceFirst)
	second, err2 := behavior.ChildAs[*CountTo](&c.Machine, countTwiceSecond)
	if err1 != nil || err2 != nil {
		ics.Addf(c.NestedName(), "children are missing or have unexpected types")
		return ics
	}
	if first.Target() != second.Target() {
		ics.Addf(c.NestedName(), "children disagree on the shared target (%d vs %d)",
			first.Target(), second.Target())
	}
	return ics
}
