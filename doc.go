// Package activity provides a DAG-based engine for running asynchronous
// tasks with typed per-task results and hook-based cancellation
// propagation.
//
// Constructors
//   - NewStarter(ctx, opts ...CollectorOption): builds a fresh Collector
//     around a shared context value and the synthetic root activity every
//     graph entry point depends on.
//   - NewSubtask[Self, S, F](collector, self, parents ...ParentRef): attaches
//     one activity instance to the graph, gated on every listed parent.
//   - NewBarrier(collector, watch ...ParentRef): watches a fixed set of
//     activities and fires a callback exactly once when all of them (or, with
//     Force, any canceled one of them) have resolved.
//   - NewEngineConfig(opts ...Option) / LoadConfig(path): build an
//     EngineConfig from functional options or from a YAML file.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created
// Collector:
//   - Reactor: a dynamically sized goroutine pool (NewReactor(0))
//   - DefaultRequired: true (a failed activity cancels its dependents)
//   - Metrics: a no-op Provider
//   - Logger: a no-op Logger
//
// Hooks
// Each activity carries three optional hooks, installed through its
// Subtask handle: CancelIf (converts a success into an error), IfErrored
// (overrides whether a cancel_if-induced error still cancels dependents),
// and IfFailed (overrides whether a failure still cancels dependents). None
// are set by default, so Required alone governs propagation.
//
// Terminal states and listener dispatch
// Every activity reaches exactly one terminal state — Okay, Failed, Error,
// or Canceled — exactly once; a second Success/Failure/Cancel call is a
// checked no-op (ErrAlreadyCompleted), never a panic. Reaching a terminal
// state posts, to the Collector's Reactor, either the activity's completion
// listeners (dependents proceed) or its cancellation listeners (dependents
// are canceled), never both.
//
// Reactor
// The engine never blocks the caller: activities dispatch listeners by
// posting to a Reactor, which runs each posted task on its own goroutine
// gated by a worker pool (fixed or dynamic, selected by
// EngineConfig.ReactorPoolSize) and reports
// in-flight worker counts through whatever metrics.Provider the Collector
// was given.
package activity
