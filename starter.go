package activity

import "sync"

// rootActivity is the starter's synthetic activity: it always succeeds
// immediately, with no payload worth naming (struct{}), giving the graph a
// single entry point so unrelated root-level activities can share one
// Begin() call.
type rootActivity struct {
	Base[rootActivity, struct{}, struct{}]
}

func (r *rootActivity) Run() { r.Success(struct{}{}) }

// Starter is the DAG's root subtask (C7). Unlike Subtask it has no
// Combinator of its own: nothing gates it, it is the graph's entry point,
// not anyone's child. Consequently it has no Prepare method — the source
// engine rejects prepare() on the root's combinator specialization at
// compile time; the Go equivalent is simply the absence of that method
// here.
type Starter struct {
	collector *Collector
	root      *rootActivity
}

// NewStarter builds a fresh Collector over ctx and the synthetic root
// activity that drives it.
func NewStarter(ctx any, opts ...CollectorOption) *Starter {
	c := NewCollector(ctx, opts...)
	r := &rootActivity{}
	r.attach(c)
	return &Starter{collector: c, root: r}
}

// Collector returns the underlying Collector, for building further
// Subtasks or Accessors over the same run.
func (s *Starter) Collector() *Collector { return s.collector }

// Accessor returns a read-only Accessor over the full Collector.
func (s *Starter) Accessor() Accessor { return NewAccessor(s.collector) }

// Done registers next as a listener of the root's synthetic success, same
// as ParentRef.Done. Root-level subtasks pass the Starter itself as their
// sole parent.
func (s *Starter) Done(next *Combinator) { s.root.Done(next) }

// Begin fires the root's synthetic success, dispatching every root-level
// subtask's combinator. Call this once, after the whole graph has been
// wired with Done/After.
func (s *Starter) Begin() { s.root.Run() }

// barrierChild adapts a Barrier to the activityRunner interface a
// per-watched-activity Combinator expects: Run fires on that activity's
// proceed route, Cancel fires on its abort route.
type barrierChild struct{ b *Barrier }

func (bc barrierChild) Run() { bc.b.arrive(false) }
func (bc barrierChild) Cancel() error {
	bc.b.arrive(true)
	return nil
}

// Barrier is the final barrier (C7): watches a fixed set of activities and
// invokes a user callback exactly once, posted to the reactor, when every
// watched activity has reached a terminal state. One per-watched-activity
// Combinator (parent count 1) reuses the same join machinery Subtask uses,
// reporting into the Barrier's own shared counter instead of starting a
// child.
type Barrier struct {
	mu        sync.Mutex
	remaining int
	force     bool
	fired     bool
	pending   bool
	callback  func(Accessor)
	collector *Collector
	reactor   Reactor
}

// NewBarrier watches every activity in watch. Exec installs the callback
// the barrier eventually fires.
func NewBarrier(collector *Collector, watch ...ParentRef) *Barrier {
	b := &Barrier{remaining: len(watch), collector: collector, reactor: collector.Reactor()}
	for _, p := range watch {
		comb := newCombinator(collector, barrierChild{b}, 1)
		p.Done(comb)
	}
	return b
}

// Force makes the barrier also fire as soon as any one watched activity is
// canceled, even while others are still pending, instead of always waiting
// for every watched activity to resolve.
func (b *Barrier) Force() *Barrier {
	b.mu.Lock()
	b.force = true
	b.mu.Unlock()
	return b
}

// Exec installs the callback the barrier invokes exactly once. Returns
// ErrBarrierFired if called more than once.
func (b *Barrier) Exec(callback func(Accessor)) error {
	b.mu.Lock()
	if b.callback != nil {
		b.mu.Unlock()
		return ErrBarrierFired
	}
	b.callback = callback
	fireNow := b.pending
	b.mu.Unlock()

	if fireNow {
		b.post()
	}
	return nil
}

// arrive is called once per watched activity, by its dedicated
// single-parent combinator's Run (canceled=false, that activity proceeded)
// or Cancel (canceled=true, that activity aborted).
func (b *Barrier) arrive(canceled bool) {
	b.mu.Lock()
	b.remaining--
	shouldFire := !b.fired && (b.remaining <= 0 || (canceled && b.force))
	if shouldFire {
		b.fired = true
	}
	b.mu.Unlock()

	if shouldFire {
		b.post()
	}
}

// post arranges for the callback to run on the reactor, deferring until
// Exec supplies one if it has not been installed yet.
func (b *Barrier) post() {
	b.mu.Lock()
	cb := b.callback
	if cb == nil {
		b.pending = true
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	acc := NewAccessor(b.collector)
	b.reactor.Post(func() { cb(acc) })
}
