package behavior

import "testing"

func TestOutcomeSetAlwaysContainsCanonicalOutcomes(t *testing.T) {
	set := NewOutcomeSet()
	for _, o := range []Outcome{Success, Preemption, Failure} {
		if !set.Contains(o) {
			t.Errorf("canonical outcome %s missing", o)
		}
	}
	if set.Len() != 3 {
		t.Errorf("expected 3 outcomes, got %d", set.Len())
	}
}

func TestOutcomeSetCustomOutcomes(t *testing.T) {
	set := NewOutcomeSet("blocked", "blocked", "low_battery")
	if !set.Contains("blocked") || !set.Contains("low_battery") {
		t.Errorf("custom outcomes missing: %v", set.List())
	}
	if set.Len() != 5 {
		t.Errorf("duplicates must collapse, got %d outcomes", set.Len())
	}
	if set.Contains("made_up") {
		t.Errorf("undeclared outcome reported as contained")
	}
}

func TestProgressFractionClamps(t *testing.T) {
	cases := []struct {
		p    Progress
		want float64
	}{
		{Progress{Goal: 10, Done: 5}, 0.5},
		{Progress{Goal: 10, Done: 15}, 1},
		{Progress{Goal: 10, Done: -1}, 0},
		{Progress{Goal: 0, Done: 5}, 0},
	}
	for _, c := range cases {
		if got := c.p.Fraction(); got != c.want {
			t.Errorf("Fraction(%+v) = %g, want %g", c.p, got, c.want)
		}
	}
}

func TestInconsistenciesCollect(t *testing.T) {
	var ics Inconsistencies
	if !ics.Empty() {
		t.Fatalf("fresh collection must be empty")
	}
	ics.Addf("mission.step", "the target has not been set")
	ics.Addf("mission", "children disagree on %q", "target")
	if ics.Empty() || len(ics.Messages()) != 2 {
		t.Fatalf("expected 2 inconsistencies, got %v", ics.Messages())
	}
}
