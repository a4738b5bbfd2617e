// Package behaviors provides the built-in behavior library: primitive
// leaves (wait, announce), an action-backed leaf (count_to) and composite
// building blocks (Sequence, count_twice). It doubles as the reference for
// writing new behaviors in downstream mission packages.
package behaviors

import (
	"github.com/openmission/openmission/pkg/behavior"
)

// Register adds every built-in behavior type to the factory.
func Register(factory *behavior.Factory) error {
	for typ, constructor := range map[behavior.Type]behavior.Constructor{
		TypeWait:       NewWait,
		TypeAnnounce:   NewAnnounce,
		TypeCountTo:    NewCountTo,
		TypeCountTwice: NewCountTwice,
	} {
		if err := factory.Register(typ, constructor); err != nil {
			return err
		}
	}
	return nil
}
