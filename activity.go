package activity

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/ygrebnov/activity/metrics"
)

// route is the outcome of an activity's finish() decision: which listener
// list gets dispatched.
type route int

const (
	routeProceed route = iota
	routeAbort
)

// activityRunner is the minimal surface the Combinator needs from a child
// activity: enough to cancel it before it starts, or to start it. Cancel
// returns error only so the same method satisfies Base's public Cancel
// (which reports ErrAlreadyCompleted on a no-op); callers in this package
// that use the interface value discard it.
type activityRunner interface {
	Cancel() error
	Run()
}

// Base is embedded by every concrete activity type (CRTP-style: the
// embedder supplies itself as Self). It owns the activity's result Slot,
// its configuration (required, cancel_if, if_errored, if_failed), and the
// completion/cancellation listener lists a Combinator attaches to via Done.
//
// Self is the activity's own type, used only as a map key (via
// reflect.TypeFor[Self]) to recover the right *Slot[S, F] from the
// Collector — see collector.go and DESIGN.md, OQ1.
type Base[Self, S, F any] struct {
	configMu sync.Mutex

	collector *Collector
	reactor   Reactor
	metrics   metrics.Provider
	logger    Logger
	id        uuid.UUID

	slot *Slot[S, F]

	required  bool
	cancelIf  func(S) bool
	ifErrored func(S) bool
	ifFailed  func(F) bool

	completionListeners   []func()
	cancellationListeners []func()
}

// attach registers the activity with c, creating or recovering its Slot,
// and wires the Collector's Reactor/metrics/logger. Called exactly once, by
// NewSubtask or NewStarter, before the activity is reachable by anything
// else.
func (b *Base[Self, S, F]) attach(c *Collector) {
	b.collector = c
	b.reactor = c.Reactor()
	b.metrics = c.Metrics()
	b.logger = c.Logger()
	b.id = uuid.New()
	b.required = c.DefaultRequired()
	b.slot = slotForOrCreate[Self, S, F](c)
}

// setRequired sets whether a failure of this activity propagates as
// cancellation to its dependents. Defaults to true.
func (b *Base[Self, S, F]) setRequired(v bool) {
	b.configMu.Lock()
	defer b.configMu.Unlock()
	b.required = v
}

// setCancelIf installs the cancel_if hook: run after a successful payload is
// recorded, before dispatch, to decide whether success should be converted
// to Error.
func (b *Base[Self, S, F]) setCancelIf(fn func(S) bool) {
	b.configMu.Lock()
	defer b.configMu.Unlock()
	b.cancelIf = fn
}

// setIfErrored installs the if_errored hook: run only when cancel_if just
// converted a success to Error, to decide whether that still aborts
// dependents (true) or merely proceeds as Error (false).
func (b *Base[Self, S, F]) setIfErrored(fn func(S) bool) {
	b.configMu.Lock()
	defer b.configMu.Unlock()
	b.ifErrored = fn
}

// setIfFailed installs the if_failed hook: run on failure, to decide
// whether the failure still aborts dependents (true) or is downgraded to
// proceed (false), overriding the required flag's default.
func (b *Base[Self, S, F]) setIfFailed(fn func(F) bool) {
	b.configMu.Lock()
	defer b.configMu.Unlock()
	b.ifFailed = fn
}

// Done registers next as both a completion and a cancellation listener:
// next.arrive fires when this activity proceeds, next.cancelFromParent
// fires when it aborts.
func (b *Base[Self, S, F]) Done(next *Combinator) {
	b.configMu.Lock()
	defer b.configMu.Unlock()
	b.completionListeners = append(b.completionListeners, next.arrive)
	b.cancellationListeners = append(b.cancellationListeners, next.cancelFromParent)
}

// Success records a successful payload and, unless the slot already
// completed, runs the cancel_if/if_errored hooks and dispatches the
// resulting route. Returns ErrAlreadyCompleted if this activity already
// reached a terminal state; per the double-resolution rule that is a
// checked no-op, not a panic.
func (b *Base[Self, S, F]) Success(payload S) error {
	if !b.slot.setSuccess(payload) {
		return ErrAlreadyCompleted
	}

	b.configMu.Lock()
	cancelIf, ifErrored := b.cancelIf, b.ifErrored
	b.configMu.Unlock()

	r := routeProceed
	if cancelIf != nil {
		if b.safeHookBool("cancel_if", func() bool { return cancelIf(payload) }) {
			b.slot.convertToError()
			if ifErrored != nil {
				if b.safeHookBool("if_errored", func() bool { return ifErrored(payload) }) {
					r = routeAbort
				}
			} else {
				r = routeAbort
			}
		}
	}
	b.metricTerminal()
	b.dispatch(r)
	return nil
}

// Failure records a failure payload and dispatches proceed or abort
// depending on the if_failed hook (if any) and the required flag. Returns
// ErrAlreadyCompleted if this activity already reached a terminal state.
func (b *Base[Self, S, F]) Failure(payload F) error {
	if !b.slot.setFailure(payload) {
		return ErrAlreadyCompleted
	}

	b.configMu.Lock()
	ifFailed, required := b.ifFailed, b.required
	b.configMu.Unlock()

	r := routeProceed
	if ifFailed != nil {
		if b.safeHookBool("if_failed", func() bool { return ifFailed(payload) }) && required {
			r = routeAbort
		}
	} else if required {
		r = routeAbort
	}
	b.metricTerminal()
	b.dispatch(r)
	return nil
}

// Cancel cancels the activity from the outside (a combinator's
// cancelFromParent, a barrier's Force, or direct user code). First terminal
// event wins: calling Cancel after the activity already completed via
// Success or Failure is a checked no-op, reported via the returned error.
func (b *Base[Self, S, F]) Cancel() error {
	if !b.slot.cancelPending() {
		return ErrAlreadyCompleted
	}
	b.metricTerminal()
	b.dispatch(routeAbort)
	return nil
}

// Run is intentionally not implemented on Base: every concrete activity
// type supplies its own Run, which does the activity's actual work and
// eventually calls Success, Failure, or Cancel on itself exactly once.

// Guard runs fn, recovering any panic, logging it, marking this activity
// failed, and tagging the panic with this activity's identity before
// re-panicking. Concrete activity types wrap
// their Run body in Guard so a panic is attributed before it reaches the
// reactor's own goroutine boundary, the same treatment the engine already
// gives listener panics.
func (b *Base[Self, S, F]) Guard(fn func()) { b.guard(fn) }

func (b *Base[Self, S, F]) Completed() bool  { return b.slot.Completed() }
func (b *Base[Self, S, F]) Canceled() bool   { return b.slot.Canceled() }
func (b *Base[Self, S, F]) Okay() bool       { return b.slot.Okay() }
func (b *Base[Self, S, F]) Failed() bool     { return b.slot.Failed() }
func (b *Base[Self, S, F]) Error() bool      { return b.slot.Error() }
func (b *Base[Self, S, F]) SuccessData() S   { return b.slot.Success() }
func (b *Base[Self, S, F]) FailureData() F   { return b.slot.Failure() }
func (b *Base[Self, S, F]) ID() uuid.UUID    { return b.id }
func (b *Base[Self, S, F]) Collector() *Collector { return b.collector }

func (b *Base[Self, S, F]) metricTerminal() {
	typeTag := metrics.WithActivityType(reflect.TypeFor[Self]().Name())
	switch {
	case b.slot.Error():
		b.metrics.Counter("activity_errored_total", typeTag).Add(1)
	case b.slot.Okay():
		b.metrics.Counter("activity_succeeded_total", typeTag).Add(1)
	case b.slot.Failed():
		b.metrics.Counter("activity_failed_total", typeTag).Add(1)
	case b.slot.Canceled():
		b.metrics.Counter("activity_canceled_total", typeTag).Add(1)
	}
}

// dispatch posts a single task to the reactor that runs the chosen listener
// list, in registration order, guarded against panics. Posting one task
// rather than one per listener preserves registration order even when the
// reactor runs posted tasks on a multi-worker pool.
func (b *Base[Self, S, F]) dispatch(r route) {
	b.configMu.Lock()
	var listeners []func()
	if r == routeProceed {
		listeners = append([]func(){}, b.completionListeners...)
	} else {
		listeners = append([]func(){}, b.cancellationListeners...)
	}
	b.configMu.Unlock()

	if len(listeners) == 0 {
		return
	}
	b.reactor.Post(func() {
		for _, l := range listeners {
			b.guard(l)
		}
	})
}

// guard recovers a panic from fn, logs it, tags it with this activity's
// identity as an ActivityMetaError, records a failure whose payload is that
// ActivityMetaError when F can hold it (the zero F otherwise), and
// re-panics: listener and activity body panics are not swallowed, only
// attributed, and propagate to the reactor's own goroutine boundary. The
// failure is recorded only if the activity has not yet reached a terminal
// state; listeners run after it has, so for them the slot stays as it is.
func (b *Base[Self, S, F]) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := toError(r)
			meta := newActivityMetaError(err, reflect.TypeFor[Self](), b.id)
			b.logger.Error("activity panic", "type", meta.ActivityType().String(), "id", meta.ActivityID().String(), "err", err)
			var payload F
			if v, ok := any(meta).(F); ok {
				payload = v
			}
			_ = b.Failure(payload)
			panic(meta)
		}
	}()
	fn()
}

// safeHookBool runs a user-supplied hook, treating a panic as if the hook
// had returned true rather than propagating it: hooks are policy
// predicates, not activity bodies, and a broken hook should fail toward the
// more conservative (abort-leaning) outcome rather than crash the run.
func (b *Base[Self, S, F]) safeHookBool(name string, fn func() bool) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("activity hook panicked, treating as true", "hook", name, "recover", fmt.Sprint(r))
			result = true
		}
	}()
	return fn()
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
