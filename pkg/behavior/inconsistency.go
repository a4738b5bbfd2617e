package behavior

import "fmt"

// Inconsistency is a human-readable pre-execution validation message.
// A behavior holding one or more inconsistencies must not be executed.
type Inconsistency struct {
	// Behavior is the nested name of the behavior the message refers to.
	Behavior string

	// Message describes what is missing or contradictory.
	Message string
}

// String implements fmt.Stringer.
func (i Inconsistency) String() string {
	if i.Behavior == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Behavior, i.Message)
}

// Inconsistencies is a list of validation messages.
type Inconsistencies []Inconsistency

// Addf appends a formatted inconsistency for the named behavior.
func (is *Inconsistencies) Addf(behavior, format string, args ...interface{}) {
	*is = append(*is, Inconsistency{
		Behavior: behavior,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Empty reports whether the list holds no inconsistencies.
func (is Inconsistencies) Empty() bool {
	return len(is) == 0
}

// Messages returns the rendered messages in order.
func (is Inconsistencies) Messages() []string {
	out := make([]string, len(is))
	for i, inc := range is {
		out[i] = inc.String()
	}
	return out
}
