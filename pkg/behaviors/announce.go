package behaviors

import (
	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/report"
)

// TypeAnnounce is the registered type of the Announce behavior.
const TypeAnnounce behavior.Type = "announce"

// Announce emits a single operator-visible report entry and succeeds. It is
// used to mark mission phases in the audit trail.
type Announce struct {
	behavior.Leaf

	message string
	level   report.Level
}

// NewAnnounce constructs an unbound Announce behavior.
func NewAnnounce() behavior.Behavior {
	return &Announce{level: report.LevelInfo}
}

// SetMessage sets the announced message.
func (a *Announce) SetMessage(message string) {
	a.message = message
}

// Message returns the configured message.
func (a *Announce) Message() string {
	return a.message
}

// SetLevel sets the report level of the announcement.
func (a *Announce) SetLevel(level report.Level) {
	a.level = level
}

// MarshalSettings stores the message and level.
func (a *Announce) MarshalSettings(settings *behavior.Settings) {
	settings.Add(behavior.StringParameter("message", a.message))
	settings.Add(behavior.StringParameter("level", string(a.level)))
}

// UnmarshalSettings applies the message and level if present.
func (a *Announce) UnmarshalSettings(settings behavior.Settings) error {
	if p, ok := settings.Get("message"); ok {
		msg, err := p.AsString()
		if err != nil {
			return err
		}
		a.message = msg
	}
	if p, ok := settings.Get("level"); ok {
		lvl, err := p.AsString()
		if err != nil {
			return err
		}
		a.level = report.Level(lvl)
	}
	return nil
}

// CheckConsistency requires a message to announce.
func (a *Announce) CheckConsistency() behavior.Inconsistencies {
	var ics behavior.Inconsistencies
	if a.message == "" {
		ics.Addf(a.NestedName(), "the message has not been set")
	}
	return ics
}

// RunMidExecution emits the announcement.
func (a *Announce) RunMidExecution() behavior.Outcome {
	a.Report(a.level, a.message)
	return behavior.Success
}
