package medium

import "fmt"

// Event classifies the outcome of one estimator step.
type Event uint8

const (
	Escaped     Event = iota // free flight ran past the exit
	Absorbed                 // absorbed inside the span
	Scattered                // scattered at the collision point
	PassThrough              // collision in a zero-density span
	numEvents
)

func (e Event) String() string {
	switch e {
	case Escaped:
		return "escaped"
	case Absorbed:
		return "absorbed"
	case Scattered:
		return "scattered"
	case PassThrough:
		return "pass_through"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// Events lists every event in order.
func Events() []Event { return []Event{Escaped, Absorbed, Scattered, PassThrough} }

// Tally counts events. It is not synchronised: keep one per worker and
// Merge after the join.
type Tally struct {
	counts [numEvents]uint64
}

// Add records one event.
func (t *Tally) Add(e Event) { t.counts[e]++ }

// Count returns the number of recorded e events.
func (t *Tally) Count(e Event) uint64 { return t.counts[e] }

// Total returns the number of recorded events.
func (t *Tally) Total() uint64 {
	var n uint64
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Merge adds o into t.
func (t *Tally) Merge(o *Tally) {
	for i, c := range o.counts {
		t.counts[i] += c
	}
}
