package activity

// Accessor is a copyable, read-only, type-narrowed view over a Collector
// (C3). Go cannot express the C++ accessor<T...>'s compile-time subset
// relation without variadic type parameters, so Accessor simply wraps the
// shared Collector pointer; the "subset" is advisory (callers are expected
// to only read the activity types they declared an interest in) rather than
// enforced by the type checker, consistent with the Collector's own
// relaxation of its key-set check to a runtime assertion (see
// collector.go and DESIGN.md, OQ1).
type Accessor struct {
	c *Collector
}

// NewAccessor builds an Accessor over a Collector or over another Accessor.
func NewAccessor(src any) Accessor {
	switch v := src.(type) {
	case *Collector:
		return Accessor{c: v}
	case Accessor:
		return Accessor{c: v.c}
	default:
		panic(Namespace + ": NewAccessor requires a *Collector or an Accessor")
	}
}

// Exists reports whether Self has ever touched the underlying collector.
func Exists[Self any](a Accessor) bool {
	return registered[Self](a.c)
}

// Completed reports Self's completed predicate, false if Self never touched
// the collector.
func Completed[Self, S, F any](a Accessor) bool {
	sl, ok := slotFor[Self, S, F](a.c)
	return ok && sl.Completed()
}

// Canceled reports Self's canceled predicate, false if Self never touched
// the collector.
func Canceled[Self, S, F any](a Accessor) bool {
	sl, ok := slotFor[Self, S, F](a.c)
	return ok && sl.Canceled()
}

// Okay reports Self's okay predicate, false if Self never touched the
// collector.
func Okay[Self, S, F any](a Accessor) bool {
	sl, ok := slotFor[Self, S, F](a.c)
	return ok && sl.Okay()
}

// Failed reports Self's failed predicate. Per the original dataset<T...>'s
// documented default, an activity that never touched the collector is
// reported as failed — an unresolved dependency is not "okay".
func Failed[Self, S, F any](a Accessor) bool {
	sl, ok := slotFor[Self, S, F](a.c)
	if !ok {
		return true
	}
	return sl.Failed()
}

// Error reports Self's error predicate, false if Self never touched the
// collector.
func Error[Self, S, F any](a Accessor) bool {
	sl, ok := slotFor[Self, S, F](a.c)
	return ok && sl.Error()
}

// Success returns Self's success payload, the zero value of S if Self never
// succeeded.
func Success[Self, S, F any](a Accessor) S {
	sl, ok := slotFor[Self, S, F](a.c)
	if !ok {
		var zero S
		return zero
	}
	return sl.Success()
}

// Failure returns Self's failure payload, the zero value of F if Self never
// failed.
func Failure[Self, S, F any](a Accessor) F {
	sl, ok := slotFor[Self, S, F](a.c)
	if !ok {
		var zero F
		return zero
	}
	return sl.Failure()
}

// Outcome is the read-only view Apply hands to its callback.
type Outcome[S, F any] struct {
	Okay    bool
	Failed  bool
	Error   bool
	Success S
	Failure F
}

// Apply invokes fn with Self's outcome iff Self has touched the collector.
func Apply[Self, S, F any](a Accessor, fn func(Outcome[S, F])) {
	sl, ok := slotFor[Self, S, F](a.c)
	if !ok {
		return
	}
	fn(Outcome[S, F]{
		Okay:    sl.Okay(),
		Failed:  sl.Failed(),
		Error:   sl.Error(),
		Success: sl.Success(),
		Failure: sl.Failure(),
	})
}
