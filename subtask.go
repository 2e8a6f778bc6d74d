package activity

// ParentRef is any subtask handle that can be declared as a graph parent:
// it can register a Combinator as both a completion and a cancellation
// listener of its own activity. Every *Self produced by NewSubtask's attach
// step satisfies this automatically, since Done is defined on Base.
type ParentRef interface {
	Done(next *Combinator)
}

// attachable is the constraint a concrete activity type must satisfy to be
// wrapped by NewSubtask: in practice this is always "embeds
// Base[Self, S, F]", since Base defines every one of these methods.
type attachable[S, F any] interface {
	activityRunner
	ParentRef
	attach(c *Collector)
	setRequired(bool)
	setCancelIf(func(S) bool)
	setIfErrored(func(S) bool)
	setIfFailed(func(F) bool)
}

// Subtask is a value-semantics handle pairing one activity instance with
// its Combinator (C6). Copies share the same underlying activity and
// combinator. The zero value is not useful; construct with NewSubtask.
type Subtask[S, F any] struct {
	self       activityRunner
	combinator *Combinator

	doneFn      func(*Combinator)
	requiredFn  func(bool)
	cancelIfFn  func(func(S) bool)
	ifErroredFn func(func(S) bool)
	ifFailedFn  func(func(F) bool)
}

// NewSubtask attaches self to collector, builds its Combinator with a
// parent count equal to len(parents), and wires every parent to signal
// that combinator on completion or cancellation. self is usually a
// freshly constructed *ConcreteActivity carrying whatever arguments its
// own constructor needs; NewSubtask itself takes no forwarded
// constructor arguments, unlike the source engine's with(collector,
// args...), because Go has no variadic perfect-forwarding and a
// caller-supplied value is simpler and more idiomatic than reflecting
// over constructor arguments.
//
// parents must be non-empty: a subtask with no parents has no combinator
// that will ever reach zero, so it would never start. A graph's entry
// points use the Starter as their sole parent instead.
func NewSubtask[Self attachable[S, F], S, F any](collector *Collector, self Self, parents ...ParentRef) (Subtask[S, F], error) {
	if len(parents) == 0 {
		return Subtask[S, F]{}, ErrNoParents
	}
	self.attach(collector)
	comb := newCombinator(collector, self, len(parents))
	for _, p := range parents {
		p.Done(comb)
	}
	return Subtask[S, F]{
		self:        self,
		combinator:  comb,
		doneFn:      self.Done,
		requiredFn:  self.setRequired,
		cancelIfFn:  self.setCancelIf,
		ifErroredFn: self.setIfErrored,
		ifFailedFn:  self.setIfFailed,
	}, nil
}

// Combinator exposes this subtask's combinator so a prior subtask can be
// wired as its parent via parent.Done(child.Combinator()).
func (s Subtask[S, F]) Combinator() *Combinator { return s.combinator }

// Done registers next as both a completion and cancellation listener of
// this subtask's activity: this activity proceeding counts as one arrival
// at next, and this activity aborting cancels next at once. Done does not
// raise next's parent count, which NewSubtask set from its parents list.
// Pass a downstream subtask's Combinator(). Signature matches ParentRef so
// a Subtask can itself be passed as a parent to another NewSubtask call.
func (s Subtask[S, F]) Done(next *Combinator) { s.doneFn(next) }

// After is the symmetric inverse of Done: wires prev to s's combinator.
// Equivalent to prev.Done(s.Combinator()), spelled from the child's side.
// The parent count NewSubtask set is not raised, so prev's arrival counts
// toward that count rather than adding to it.
func (s Subtask[S, F]) After(prev ParentRef) Subtask[S, F] {
	prev.Done(s.combinator)
	return s
}

// Prepare installs a preparator on this subtask's combinator: invoked with
// a read-only Accessor over the collector immediately before the child
// starts, after every parent has proceeded. Not defined on the starter's
// subtask type (see starter.go): the source engine rejects prepare() on
// the root's combinator specialization at compile time.
func (s Subtask[S, F]) Prepare(fn func(Accessor)) Subtask[S, F] {
	s.combinator.prepare(fn)
	return s
}

// Required sets whether this activity's failure propagates as cancellation
// to its dependents. Defaults to true.
func (s Subtask[S, F]) Required(v bool) Subtask[S, F] {
	s.requiredFn(v)
	return s
}

// CancelIf installs the cancel_if hook.
func (s Subtask[S, F]) CancelIf(fn func(S) bool) Subtask[S, F] {
	s.cancelIfFn(fn)
	return s
}

// IfErrored installs the if_errored hook.
func (s Subtask[S, F]) IfErrored(fn func(S) bool) Subtask[S, F] {
	s.ifErroredFn(fn)
	return s
}

// IfFailed installs the if_failed hook.
func (s Subtask[S, F]) IfFailed(fn func(F) bool) Subtask[S, F] {
	s.ifFailedFn(fn)
	return s
}

// IfCanceled installs fn as both if_errored and if_failed: a single
// override for "this activity reached a non-proceed terminal state",
// regardless of whether it got there via cancel_if or via a plain failure.
func (s Subtask[S, F]) IfCanceled(fn func() bool) Subtask[S, F] {
	s.ifErroredFn(func(S) bool { return fn() })
	s.ifFailedFn(func(F) bool { return fn() })
	return s
}
