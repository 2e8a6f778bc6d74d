package activity

import "time"

// syncReactor runs every posted task inline, synchronously, on the calling
// goroutine. Tests use it so listener dispatch is deterministic without
// needing to poll for async completion.
type syncReactor struct{}

func (syncReactor) Post(task func())                                { task() }
func (syncReactor) Timer(time.Duration, func()) func()               { return func() {} }
func (syncReactor) Strand() Reactor                                  { return syncReactor{} }
