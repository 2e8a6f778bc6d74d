package activity

import "errors"

const Namespace = "activity"

var (
	// ErrUnregisteredActivity names the case of an activity type that has never
	// been attached to the collector. No function in this package returns it:
	// the accessor functions report defaults for such a type instead (see
	// accessor.go).
	ErrUnregisteredActivity = errors.New(Namespace + ": activity type not registered in collector")

	// ErrAlreadyCompleted marks an attempted second terminal write on an activity
	// whose first terminal event already ran. Implementations must treat this as
	// a checked no-op; Success, Failure and Cancel return it to tell the caller
	// that the call changed nothing.
	ErrAlreadyCompleted = errors.New(Namespace + ": activity already completed")

	// ErrNoParents is returned by NewSubtask when zero parent references are
	// supplied for a non-root subtask; use the Starter for DAG roots instead.
	ErrNoParents = errors.New(Namespace + ": subtask requires at least one parent")

	// ErrInvalidConfig flags a rejected EngineConfig.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// ErrBarrierFired is returned by Barrier.Exec if called more than once.
	ErrBarrierFired = errors.New(Namespace + ": final barrier already armed")
)
