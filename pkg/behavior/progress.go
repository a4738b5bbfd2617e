package behavior

import "sync"

// Progress is a snapshot of a behavior's completion state. It is a value,
// not a stream: each query returns the most recent snapshot as a whole.
type Progress struct {
	// Goal is the total amount of work, in Unit.
	Goal float64 `json:"goal"`

	// Done is the amount of work completed so far, in Unit.
	Done float64 `json:"done"`

	// Unit names the unit of Goal and Done, empty when unitless.
	Unit string `json:"unit,omitempty"`
}

// Fraction returns Done/Goal clamped to [0, 1], or 0 when no goal is set.
func (p Progress) Fraction() float64 {
	if p.Goal <= 0 {
		return 0
	}
	f := p.Done / p.Goal
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// IsZero reports whether the progress carries no information.
func (p Progress) IsZero() bool {
	return p == Progress{}
}

// progressCell is a single-writer, multi-reader snapshot holder. The
// execution thread is the sole writer; progress-query threads are readers.
// Writes replace the whole snapshot so a reader never observes a partially
// updated value.
type progressCell struct {
	mu sync.RWMutex
	p  Progress
}

func (c *progressCell) store(p Progress) {
	c.mu.Lock()
	c.p = p
	c.mu.Unlock()
}

func (c *progressCell) load() Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.p
}

func (c *progressCell) reset() {
	c.store(Progress{})
}
