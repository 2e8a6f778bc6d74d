package activity

import "sync"

// Combinator is the join node that counts parent arrivals for one child
// activity (C5). A child with N parents owns one Combinator tracking N
// arrivals: Run fires once every parent has proceeded (via arrive), or
// never if any required parent aborts (via cancelFromParent).
//
// There is no separate source file for this component in the retrieval
// pack's original_source/ (start.h includes an after.h that is not present
// in the pack), so its two-entry-point shape is grounded directly on
// spec.md's description of Done registering "both a completion and a
// cancellation listener" pointing at the same next node, plus the
// concurrency note that cancellation bypasses the arrival counter.
type Combinator struct {
	mu sync.Mutex

	remaining  int
	started    bool
	canceled   bool
	child      activityRunner
	collector  *Collector
	preparator func(Accessor)
}

// newCombinator builds a Combinator for a child with parentCount parents.
func newCombinator(collector *Collector, child activityRunner, parentCount int) *Combinator {
	return &Combinator{remaining: parentCount, child: child, collector: collector}
}

// prepare installs a callback run, with a read-only Accessor over the
// collector, immediately before the child starts. The Starter never
// exposes this (see starter.go): the source engine
// rejects prepare() on init's combinator specialization at compile time,
// and the Go equivalent is simply not defining the forwarding method.
func (c *Combinator) prepare(fn func(Accessor)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preparator = fn
}

// arrive is the completion-listener entry point a parent's Done wiring
// calls when that parent proceeds. It decrements the arrival counter and
// starts the child once every parent has arrived, unless a cancellation
// already short-circuited it.
func (c *Combinator) arrive() {
	c.mu.Lock()
	c.remaining--
	ready := c.remaining <= 0 && !c.canceled && !c.started
	var prep func(Accessor)
	var collector *Collector
	if ready {
		c.started = true
		prep = c.preparator
		collector = c.collector
	}
	c.mu.Unlock()

	if !ready {
		return
	}
	if prep != nil {
		prep(NewAccessor(collector))
	}
	c.child.Run()
}

// cancelFromParent is the cancellation-listener entry point a parent's Done
// wiring calls when that parent aborts. It propagates cancellation to the
// child immediately, bypassing the arrival counter entirely: a combinator
// cancels its child as soon as one required parent aborts, even while
// other parents have not arrived yet.
func (c *Combinator) cancelFromParent() {
	c.mu.Lock()
	already := c.canceled || c.started
	c.canceled = true
	c.mu.Unlock()

	if already {
		return
	}
	c.child.Cancel()
}
